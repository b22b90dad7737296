package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/shoplist-app/reminder-service/internal/platform/config"
	"github.com/shoplist-app/reminder-service/internal/platform/database"
	"github.com/shoplist-app/reminder-service/internal/platform/logger"
	"github.com/shoplist-app/reminder-service/internal/reminder_service/adapters/whatsapp"
	"github.com/shoplist-app/reminder-service/internal/reminder_service/app"
	"github.com/shoplist-app/reminder-service/internal/reminder_service/middleware"
	"github.com/shoplist-app/reminder-service/internal/reminder_service/repository/postgres"
	httptransport "github.com/shoplist-app/reminder-service/internal/reminder_service/transport/http"
)

const (
	serviceName     = "reminder-service"
	shutdownTimeout = 30 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	log.Info("Starting service...", "port", cfg.HTTPPort)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		log.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("Database connection pool initialized")

	reminderRepo := postgres.NewPgReminderRepository(dbPool, log)

	var sender whatsapp.Sender
	if cfg.WhatsAppAccessToken == "" || cfg.WhatsAppPhoneNumberID == "" {
		log.Warn("WhatsApp credentials not configured, using mock sender (messages are not delivered)")
		sender = whatsapp.NewMockSender(log, false, 0)
	} else {
		sender = whatsapp.NewClient(log, cfg.WhatsAppAPIBaseURL, cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID, nil)
	}

	scheduler := app.NewScheduler(reminderRepo, sender, log, cfg.DeliveryTimeout)

	if cfg.RecoverOnStartup {
		// Timers are process-local; re-arm whatever a previous run left in
		// the scheduled state. Past-due reminders fire immediately.
		restored, err := scheduler.RestorePending(mainCtx)
		if err != nil {
			log.Error("Failed to restore pending reminders", "error", err)
			os.Exit(1)
		}
		log.Info("Pending reminder recovery complete", "restored", restored)
	}

	validate := validator.New()
	reminderHandler := httptransport.NewReminderHandler(scheduler, sender, log, validate)
	authMW := middleware.AuthMiddleware(cfg.JWTAccessSecret, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(authMW)
		reminderHandler.RegisterRoutes(v1)
	})

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: r}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received termination signal", "signal", sig.String())
	case <-groupCtx.Done():
		log.Error("A component failed, initiating shutdown", "error", groupCtx.Err())
	}

	mainCancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Error during shutdown", "error", err)
	}

	// Unfired timers are dropped here; RestorePending re-arms them on the
	// next start. In-flight deliveries get the shutdown window to finish.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		log.Error("Scheduler did not stop cleanly", "error", err)
	}

	log.Info("Service shutdown complete.")
}
