package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventrio/internal/domain"
)

const eventColumns = `
	e.id, e.creator_id, u.username, u.phone_number, e.title, e.description, e.location,
	e.date, e.time, e.flyer_url, e.registration_link,
	(SELECT COUNT(*) FROM attendees a WHERE a.event_id = e.id) AS attendee_count,
	e.created_at, e.updated_at`

const eventFrom = `
	FROM events e
	JOIN users u ON u.id = e.creator_id`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var at string
	if err := row.Scan(
		&e.ID, &e.CreatorID, &e.Creator, &e.CreatorPhone, &e.Title, &e.Description, &e.Location,
		&e.Date, &at, &e.FlyerURL, &e.RegistrationLink, &e.AttendeeCount,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	// TIME columns come back as "15:04:05".
	if len(at) >= 5 {
		at = at[:5]
	}
	e.Time = at
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, creator_id, title, description, location, date, time, registration_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.CreatorID, e.Title, e.Description, e.Location, e.DateString(), e.Time, e.RegistrationLink, e.CreatedAt, e.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *eventRepository) getOne(ctx context.Context, where string, arg any) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + eventFrom + ` WHERE ` + where
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `e.id = $1`, id)
}

func (r *eventRepository) GetByRegistrationLink(ctx context.Context, link string) (*domain.Event, error) {
	return r.getOne(ctx, `e.registration_link = $1`, strings.TrimSpace(link))
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListByCreatorID(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + eventFrom + `
		WHERE e.creator_id = $1
		ORDER BY e.created_at DESC`
	return r.list(ctx, query, creatorID)
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + eventColumns + eventFrom + `
		ORDER BY e.date ASC, e.time ASC
		LIMIT $1 OFFSET $2`
	events, err := r.list(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + eventFrom + `
		WHERE e.date BETWEEN $1 AND $2
		ORDER BY e.date ASC, e.time ASC`
	return r.list(ctx, query, from.Format(domain.DateLayout), to.Format(domain.DateLayout))
}

func (r *eventRepository) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	if upd.Empty() {
		return r.GetByID(ctx, eventID)
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, v)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Date != nil {
		add("date", upd.Date.Format(domain.DateLayout))
	}
	if upd.Time != nil {
		add("time", *upd.Time)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), n)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, eventID)
}

func (r *eventRepository) SetFlyerURL(ctx context.Context, eventID, url string) error {
	query := `UPDATE events SET flyer_url = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, url, eventID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
