package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReminderStatus represents the delivery state of a reminder.
type ReminderStatus string

const (
	StatusScheduled ReminderStatus = "scheduled"
	StatusSent      ReminderStatus = "sent"
	StatusFailed    ReminderStatus = "failed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s ReminderStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Reminder is a scheduled WhatsApp message for a shopping-list item.
// ItemName and ListName are captured by value at schedule time; renaming
// the item afterwards does not affect a pending reminder.
type Reminder struct {
	ID           uuid.UUID      `json:"id"`
	PhoneNumber  string         `json:"phone_number"`
	ItemName     string         `json:"item_name"`
	ListName     string         `json:"list_name"`
	ScheduledFor time.Time      `json:"scheduled_for"`
	Status       ReminderStatus `json:"status"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewReminder creates a Reminder in the scheduled state. The ID is
// generated here; CreatedAt/UpdatedAt are stamped by the repository.
func NewReminder(phoneNumber, itemName, listName string, scheduledFor time.Time) *Reminder {
	return &Reminder{
		ID:           uuid.New(),
		PhoneNumber:  phoneNumber,
		ItemName:     itemName,
		ListName:     listName,
		ScheduledFor: scheduledFor,
		Status:       StatusScheduled,
	}
}
