package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shoplist-app/reminder-service/internal/reminder_service/adapters/whatsapp"
	"github.com/shoplist-app/reminder-service/internal/reminder_service/domain"
)

const defaultDeliveryTimeout = 30 * time.Second

// Scheduler owns the in-process one-shot timers that deliver reminders.
// Each reminder gets exactly one timer and exactly one delivery attempt;
// the timer registry is process-local, so RestorePending must run at
// startup to re-register timers lost to a restart.
type Scheduler struct {
	repo            domain.ReminderRepository
	sender          whatsapp.Sender
	logger          *slog.Logger
	deliveryTimeout time.Duration

	mu       sync.Mutex
	timers   map[uuid.UUID]*time.Timer
	stopped  bool
	inFlight sync.WaitGroup
}

func NewScheduler(repo domain.ReminderRepository, sender whatsapp.Sender, logger *slog.Logger, deliveryTimeout time.Duration) *Scheduler {
	if deliveryTimeout <= 0 {
		deliveryTimeout = defaultDeliveryTimeout
	}
	return &Scheduler{
		repo:            repo,
		sender:          sender,
		logger:          logger.With("component", "reminder_scheduler"),
		deliveryTimeout: deliveryTimeout,
		timers:          make(map[uuid.UUID]*time.Timer),
	}
}

// ScheduleReminder validates the phone number, persists the reminder and
// registers a one-shot timer for its target time. It returns the new
// reminder's ID synchronously; the delivery outcome is recorded in storage,
// not reported to the caller.
func (s *Scheduler) ScheduleReminder(ctx context.Context, scheduledFor time.Time, phoneNumber, itemName, listName string) (uuid.UUID, error) {
	if err := domain.ValidatePhoneNumber(phoneNumber); err != nil {
		s.logger.WarnContext(ctx, "Rejecting reminder with invalid phone number", "item_name", itemName)
		return uuid.Nil, err
	}

	reminder := domain.NewReminder(phoneNumber, itemName, listName, scheduledFor)
	if err := s.repo.Create(ctx, reminder); err != nil {
		// No timer for a reminder that does not exist in storage.
		return uuid.Nil, fmt.Errorf("persisting reminder: %w", err)
	}

	s.registerTimer(reminder)
	remindersScheduledCounter.Inc()
	s.logger.InfoContext(ctx, "Reminder scheduled",
		"reminder_id", reminder.ID, "scheduled_for", scheduledFor, "item_name", itemName, "list_name", listName)
	return reminder.ID, nil
}

// GetReminder returns the persisted state of a reminder; this is how
// delivery outcomes become visible after the fact.
func (s *Scheduler) GetReminder(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	return s.repo.GetByID(ctx, id)
}

// RestorePending re-registers timers for all reminders still in the
// scheduled state. Past-due reminders fire immediately rather than being
// dropped. Returns the number of timers registered.
func (s *Scheduler) RestorePending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListByStatus(ctx, domain.StatusScheduled)
	if err != nil {
		return 0, fmt.Errorf("listing pending reminders: %w", err)
	}
	for _, reminder := range pending {
		s.registerTimer(reminder)
	}
	if len(pending) > 0 {
		s.logger.InfoContext(ctx, "Restored pending reminder timers", "count", len(pending))
	}
	return len(pending), nil
}

// registerTimer arms a one-shot timer for the reminder. A target time in
// the past or at "now" fires as soon as the runtime allows; scheduling is
// never rejected for being late.
func (s *Scheduler) registerTimer(reminder *domain.Reminder) {
	id := reminder.ID
	phoneNumber := reminder.PhoneNumber
	itemName := reminder.ItemName
	listName := reminder.ListName

	delay := time.Until(reminder.ScheduledFor)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.logger.Warn("Scheduler stopped, not registering timer", "reminder_id", id)
		return
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		if !s.beginDelivery(id) {
			return
		}
		defer s.inFlight.Done()
		s.deliver(id, phoneNumber, itemName, listName)
	})
}

// beginDelivery claims the fired timer. It returns false when the
// scheduler is shutting down, so a racing timer does not start work after
// Stop has begun waiting.
func (s *Scheduler) beginDelivery(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	delete(s.timers, id)
	s.inFlight.Add(1)
	return true
}

// deliver runs on the timer goroutine: one send attempt, then one terminal
// status write. A failure to record the outcome is logged and swallowed so
// bookkeeping can never crash delivery.
func (s *Scheduler) deliver(id uuid.UUID, phoneNumber, itemName, listName string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout)
	defer cancel()

	timer := prometheus.NewTimer(reminderDeliveryDurationHist)
	defer timer.ObserveDuration()

	message := fmt.Sprintf("Reminder: you need to buy %q from your list %q!", itemName, listName)
	s.logger.InfoContext(ctx, "Delivering reminder", "reminder_id", id)

	_, err := s.sender.SendText(ctx, phoneNumber, message)
	if err != nil {
		reminderDeliveriesCounter.WithLabelValues("failed").Inc()
		errMsg := err.Error()
		s.logger.WarnContext(ctx, "Reminder delivery failed", "reminder_id", id, "error", err)
		if updateErr := s.repo.UpdateStatus(ctx, id, domain.StatusFailed, nil, &errMsg); updateErr != nil {
			s.logger.ErrorContext(ctx, "Failed to record reminder failure", "reminder_id", id, "error", updateErr)
		}
		return
	}

	reminderDeliveriesCounter.WithLabelValues("sent").Inc()
	sentAt := time.Now().UTC()
	if updateErr := s.repo.UpdateStatus(ctx, id, domain.StatusSent, &sentAt, nil); updateErr != nil {
		s.logger.ErrorContext(ctx, "Failed to record reminder as sent", "reminder_id", id, "error", updateErr)
		return
	}
	s.logger.InfoContext(ctx, "Reminder delivered", "reminder_id", id, "sent_at", sentAt)
}

// Stop cancels unfired timers and waits for in-flight deliveries, bounded
// by ctx. Stopped timers simply never fire; their reminders stay in the
// scheduled state and are picked up by RestorePending on the next start.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight deliveries: %w", ctx.Err())
	}
}
