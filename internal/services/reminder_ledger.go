package services

import (
	"context"
	"time"

	"eventrio/internal/domain"
)

type reminderLedger struct {
	repo domain.ReminderRepository
	loc  *time.Location
}

// NewReminderLedger returns a ReminderLedger whose "today" is the calendar day in loc.
func NewReminderLedger(repo domain.ReminderRepository, loc *time.Location) domain.ReminderLedger {
	if loc == nil {
		loc = time.UTC
	}
	return &reminderLedger{repo: repo, loc: loc}
}

// dayBounds returns [start, end) of now's calendar day in the ledger location.
func (l *reminderLedger) dayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.In(l.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, l.loc)
	return start, start.AddDate(0, 0, 1)
}

func (l *reminderLedger) HasSentToday(ctx context.Context, attendeeID string, now time.Time) (bool, error) {
	from, to := l.dayBounds(now)
	ok, err := l.repo.ExistsForAttendeeBetween(ctx, attendeeID, from, to)
	if err != nil {
		return false, &domain.PersistenceError{Op: "has_sent_today", Err: err}
	}
	return ok, nil
}

func (l *reminderLedger) ChannelsSentToday(ctx context.Context, attendeeID string, now time.Time) ([]domain.Channel, error) {
	from, to := l.dayBounds(now)
	channels, err := l.repo.ListChannelsForAttendeeBetween(ctx, attendeeID, from, to)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "channels_sent_today", Err: err}
	}
	return channels, nil
}

func (l *reminderLedger) Record(ctx context.Context, attendeeID, message string, channel domain.Channel, now time.Time) (*domain.Reminder, error) {
	if !channel.Valid() {
		return nil, &domain.PersistenceError{Op: "record", Err: domain.InvalidInputError("unknown channel %q", channel)}
	}
	day, _ := l.dayBounds(now)
	r := &domain.Reminder{
		AttendeeID: attendeeID,
		SentAt:     now,
		Message:    message,
		Channel:    channel,
	}
	if err := l.repo.Create(ctx, r, day); err != nil {
		return nil, &domain.PersistenceError{Op: "record", Err: err}
	}
	return r, nil
}
