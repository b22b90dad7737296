package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shoplist-app/reminder-service/internal/reminder_service/adapters/whatsapp"
	"github.com/shoplist-app/reminder-service/internal/reminder_service/domain"
)

// ReminderService is the application-layer collaborator the handler talks
// to. Ownership of the underlying list/item must already be authorized by
// the time a request reaches ScheduleReminder.
type ReminderService interface {
	ScheduleReminder(ctx context.Context, scheduledFor time.Time, phoneNumber, itemName, listName string) (uuid.UUID, error)
	GetReminder(ctx context.Context, id uuid.UUID) (*domain.Reminder, error)
}

type ReminderHandler struct {
	service  ReminderService
	sender   whatsapp.Sender
	logger   *slog.Logger
	validate *validator.Validate
}

func NewReminderHandler(service ReminderService, sender whatsapp.Sender, logger *slog.Logger, validate *validator.Validate) *ReminderHandler {
	return &ReminderHandler{
		service:  service,
		sender:   sender,
		logger:   logger,
		validate: validate,
	}
}

func (h *ReminderHandler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reqDTO ScheduleReminderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body for ScheduleReminder", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for ScheduleReminder", "error", err)
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}

	id, err := h.service.ScheduleReminder(ctx, reqDTO.ScheduledFor, reqDTO.PhoneNumber, reqDTO.ItemName, reqDTO.ListName)
	if err != nil {
		h.writeServiceError(w, r, err, "ScheduleReminder")
		return
	}

	reminder, err := h.service.GetReminder(ctx, id)
	if err != nil {
		// The reminder exists; reading it back is best-effort for the body.
		h.logger.WarnContext(ctx, "Scheduled reminder but failed to read it back", "reminder_id", id, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": id.String(), "status": string(domain.StatusScheduled)})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(reminderToDTO(reminder)); err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode response for ScheduleReminder", "error", err)
	}
}

func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.WarnContext(ctx, "Invalid reminder ID", "id", idParam)
		http.Error(w, "Invalid reminder ID", http.StatusBadRequest)
		return
	}

	reminder, err := h.service.GetReminder(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err, "GetReminder")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reminderToDTO(reminder)); err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode response for GetReminder", "error", err)
	}
}

// SendTestMessage sends an immediate message so an operator can verify the
// WhatsApp integration without scheduling anything.
func (h *ReminderHandler) SendTestMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reqDTO TestMessageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body for SendTestMessage", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}

	const testBody = "WhatsApp integration test! If you received this message, the configuration is working."
	result, err := h.sender.SendText(ctx, reqDTO.PhoneNumber, testBody)
	if err != nil {
		h.writeServiceError(w, r, err, "SendTestMessage")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TestMessageResponseDTO{Success: true, ProviderMessageID: result.MessageID}); err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode response for SendTestMessage", "error", err)
	}
}

// writeServiceError maps domain errors to HTTP status codes.
func (h *ReminderHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	ctx := r.Context()

	var provErr *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrInvalidPhoneNumber):
		h.logger.WarnContext(ctx, "Invalid phone number", "operation", operation)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrReminderNotFound):
		http.Error(w, "Reminder not found", http.StatusNotFound)
	case errors.As(err, &provErr):
		h.logger.WarnContext(ctx, "Provider rejected request", "operation", operation, "status_code", provErr.StatusCode, "provider_message", provErr.Message)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		h.logger.ErrorContext(ctx, "Unhandled service error", "operation", operation, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// RegisterRoutes registers reminder routes on a chi router.
func (h *ReminderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reminders", h.ScheduleReminder)
	r.Get("/reminders/{id}", h.GetReminder)
	r.Post("/messages/test", h.SendTestMessage)
}
