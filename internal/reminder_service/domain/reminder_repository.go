package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReminderRepository defines the persistence interface for reminders.
// There is deliberately no Delete: reminders are never removed, only
// transitioned to a terminal status.
type ReminderRepository interface {
	// Create persists a new reminder in the scheduled state and stamps
	// CreatedAt/UpdatedAt.
	Create(ctx context.Context, reminder *Reminder) error

	// GetByID returns ErrReminderNotFound when no row exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error)

	// UpdateStatus transitions a reminder to a terminal status, attaching
	// sentAt (for sent) or errorMessage (for failed). The one-transition
	// invariant is a caller contract: the scheduler calls this exactly once
	// per reminder, the store does not guard against a second call.
	UpdateStatus(ctx context.Context, id uuid.UUID, status ReminderStatus, sentAt *time.Time, errorMessage *string) error

	// ListByStatus is used by the startup recovery pass to find reminders
	// whose timers were lost to a restart.
	ListByStatus(ctx context.Context, status ReminderStatus) ([]*Reminder, error)
}
