package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shoplist-app/reminder-service/internal/reminder_service/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repository needs. Declared as
// an interface so tests can substitute pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgReminderRepository struct {
	db     PgxPool
	logger *slog.Logger
}

func NewPgReminderRepository(db PgxPool, logger *slog.Logger) *PgReminderRepository {
	return &PgReminderRepository{db: db, logger: logger.With("component", "reminder_repository_pg")}
}

func (r *PgReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	if reminder.Status == "" {
		reminder.Status = domain.StatusScheduled
	}
	now := time.Now().UTC()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now

	query := `
		INSERT INTO reminders (id, phone_number, item_name, list_name, scheduled_for, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		reminder.ID, reminder.PhoneNumber, reminder.ItemName, reminder.ListName,
		reminder.ScheduledFor, reminder.Status, reminder.CreatedAt, reminder.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating reminder", "error", err, "reminder_id", reminder.ID)
		return fmt.Errorf("creating reminder: %w", err)
	}
	r.logger.InfoContext(ctx, "Reminder created", "reminder_id", reminder.ID, "scheduled_for", reminder.ScheduledFor)
	return nil
}

func (r *PgReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	query := `
		SELECT id, phone_number, item_name, list_name, scheduled_for, status, sent_at, error_message, created_at, updated_at
		FROM reminders
		WHERE id = $1
	`
	reminder := &domain.Reminder{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&reminder.ID, &reminder.PhoneNumber, &reminder.ItemName, &reminder.ListName,
		&reminder.ScheduledFor, &reminder.Status, &reminder.SentAt, &reminder.ErrorMessage,
		&reminder.CreatedAt, &reminder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReminderNotFound
		}
		r.logger.ErrorContext(ctx, "Error fetching reminder", "error", err, "reminder_id", id)
		return nil, fmt.Errorf("fetching reminder: %w", err)
	}
	return reminder, nil
}

func (r *PgReminderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReminderStatus, sentAt *time.Time, errorMessage *string) error {
	now := time.Now().UTC()
	query := `
		UPDATE reminders
		SET status = $2, sent_at = COALESCE($3, sent_at), error_message = COALESCE($4, error_message), updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, status, sentAt, errorMessage, now)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating reminder status", "error", err, "reminder_id", id, "status", status)
		return fmt.Errorf("updating reminder status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	r.logger.InfoContext(ctx, "Reminder status updated", "reminder_id", id, "status", status)
	return nil
}

func (r *PgReminderRepository) ListByStatus(ctx context.Context, status domain.ReminderStatus) ([]*domain.Reminder, error) {
	query := `
		SELECT id, phone_number, item_name, list_name, scheduled_for, status, sent_at, error_message, created_at, updated_at
		FROM reminders
		WHERE status = $1
		ORDER BY scheduled_for ASC
	`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("listing reminders by status: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		reminder := &domain.Reminder{}
		err := rows.Scan(
			&reminder.ID, &reminder.PhoneNumber, &reminder.ItemName, &reminder.ListName,
			&reminder.ScheduledFor, &reminder.Status, &reminder.SentAt, &reminder.ErrorMessage,
			&reminder.CreatedAt, &reminder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning reminder row: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reminder rows: %w", err)
	}
	return reminders, nil
}
