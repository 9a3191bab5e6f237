package postgres

import (
	"context"
	"database/sql"
	"time"

	"eventrio/internal/domain"
)

type reminderRepository struct {
	DB *sql.DB
}

// NewReminderRepository returns the Postgres-backed reminder ledger store.
// Rows are only ever inserted.
func NewReminderRepository(db *sql.DB) domain.ReminderRepository {
	return &reminderRepository{DB: db}
}

// Create inserts the entry. day is the calendar day the entry counts against for dedup;
// a second entry for the same attendee, channel and day violates the unique key.
func (r *reminderRepository) Create(ctx context.Context, rem *domain.Reminder, day time.Time) error {
	query := `
		INSERT INTO reminders (attendee_id, sent_at, sent_on, message, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		rem.AttendeeID, rem.SentAt, day.Format(domain.DateLayout), rem.Message, string(rem.Channel),
	).Scan(&rem.ID)
	return mapWriteErr(err)
}

func (r *reminderRepository) ExistsForAttendeeBetween(ctx context.Context, attendeeID string, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reminders
			WHERE attendee_id = $1 AND sent_at >= $2 AND sent_at < $3
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, attendeeID, from, to).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *reminderRepository) ListChannelsForAttendeeBetween(ctx context.Context, attendeeID string, from, to time.Time) ([]domain.Channel, error) {
	query := `
		SELECT DISTINCT type FROM reminders
		WHERE attendee_id = $1 AND sent_at >= $2 AND sent_at < $3
	`
	rows, err := r.DB.QueryContext(ctx, query, attendeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var channels []domain.Channel
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		channels = append(channels, domain.Channel(c))
	}
	return channels, rows.Err()
}

func (r *reminderRepository) ListByAttendeeID(ctx context.Context, attendeeID string) ([]*domain.Reminder, error) {
	query := `
		SELECT id, attendee_id, sent_at, message, type
		FROM reminders
		WHERE attendee_id = $1
		ORDER BY sent_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, attendeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reminders := []*domain.Reminder{}
	for rows.Next() {
		rem := &domain.Reminder{}
		var c string
		if err := rows.Scan(&rem.ID, &rem.AttendeeID, &rem.SentAt, &rem.Message, &c); err != nil {
			return nil, err
		}
		rem.Channel = domain.Channel(c)
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}
