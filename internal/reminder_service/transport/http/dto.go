package http

import (
	"time"

	"github.com/shoplist-app/reminder-service/internal/reminder_service/domain"
)

type ScheduleReminderRequestDTO struct {
	PhoneNumber  string    `json:"phone_number" validate:"required"`
	ItemName     string    `json:"item_name" validate:"required"`
	ListName     string    `json:"list_name" validate:"required"`
	ScheduledFor time.Time `json:"scheduled_for" validate:"required"`
}

type ReminderDTO struct {
	ID           string     `json:"id"`
	PhoneNumber  string     `json:"phone_number"`
	ItemName     string     `json:"item_name"`
	ListName     string     `json:"list_name"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Status       string     `json:"status"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func reminderToDTO(reminder *domain.Reminder) ReminderDTO {
	return ReminderDTO{
		ID:           reminder.ID.String(),
		PhoneNumber:  reminder.PhoneNumber,
		ItemName:     reminder.ItemName,
		ListName:     reminder.ListName,
		ScheduledFor: reminder.ScheduledFor,
		Status:       string(reminder.Status),
		SentAt:       reminder.SentAt,
		ErrorMessage: reminder.ErrorMessage,
		CreatedAt:    reminder.CreatedAt,
	}
}

type TestMessageRequestDTO struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type TestMessageResponseDTO struct {
	Success           bool   `json:"success"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
}
