package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventrio/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

// NewAttendeeRepository returns a domain.AttendeeRepository implemented with Postgres.
func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{DB: db}
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (event_id, name, email, phone_number, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.EventID, a.Name, a.Email, a.PhoneNumber, a.RegisteredAt).Scan(&a.ID)
	return mapWriteErr(err)
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	query := `
		SELECT id, event_id, name, email, phone_number, registered_at
		FROM attendees
		WHERE id = $1
	`
	a := &domain.Attendee{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.PhoneNumber, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT id, event_id, name, email, phone_number, registered_at
		FROM attendees
		WHERE event_id = $1
		ORDER BY registered_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := []*domain.Attendee{}
	for rows.Next() {
		a := &domain.Attendee{}
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.PhoneNumber, &a.RegisteredAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attendees, nil
}

func (r *attendeeRepository) GetLatestByPhone(ctx context.Context, phone string) (*domain.Attendee, error) {
	query := `
		SELECT id, event_id, name, email, phone_number, registered_at
		FROM attendees
		WHERE phone_number = $1
		ORDER BY registered_at DESC
		LIMIT 1
	`
	a := &domain.Attendee{}
	err := r.DB.QueryRowContext(ctx, query, phone).
		Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.PhoneNumber, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
