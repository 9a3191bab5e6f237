package domain

import (
	"context"
	"time"
)

// Channel is a notification transport.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelWhatsApp Channel = "WHATSAPP"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// Reminder is an append-only ledger entry proving a notification was sent.
// swagger:model Reminder
type Reminder struct {
	ID         string    `json:"id"`
	AttendeeID string    `json:"attendee_id"`
	SentAt     time.Time `json:"sent_at"`
	Message    string    `json:"message"`
	Channel    Channel   `json:"type"`
}

// DedupScope selects how the daily reminder debounce is keyed.
type DedupScope string

const (
	// DedupPerAttendee skips an attendee for the day once any channel has an entry.
	DedupPerAttendee DedupScope = "attendee"
	// DedupPerChannel skips only the channels that already have an entry for the day.
	DedupPerChannel DedupScope = "channel"
)

// ReminderRepository is the storage port of the reminder ledger.
// Day bounds are half-open: [from, to).
type ReminderRepository interface {
	Create(ctx context.Context, r *Reminder, day time.Time) error
	ExistsForAttendeeBetween(ctx context.Context, attendeeID string, from, to time.Time) (bool, error)
	ListChannelsForAttendeeBetween(ctx context.Context, attendeeID string, from, to time.Time) ([]Channel, error)
	ListByAttendeeID(ctx context.Context, attendeeID string) ([]*Reminder, error)
}

// ReminderLedger is the deduplication and audit contract used by the reminder scheduler.
// Every error it returns is a *PersistenceError.
type ReminderLedger interface {
	HasSentToday(ctx context.Context, attendeeID string, now time.Time) (bool, error)
	ChannelsSentToday(ctx context.Context, attendeeID string, now time.Time) ([]Channel, error)
	Record(ctx context.Context, attendeeID, message string, channel Channel, now time.Time) (*Reminder, error)
}

// ReminderRunSummary aggregates the outcome of one reminder cycle.
type ReminderRunSummary struct {
	StartedAt           time.Time       `json:"started_at"`
	FinishedAt          time.Time       `json:"finished_at"`
	WindowFrom          string          `json:"window_from"`
	WindowTo            string          `json:"window_to"`
	EventsSelected      int             `json:"events_selected"`
	AttendeesConsidered int             `json:"attendees_considered"`
	Skipped             int             `json:"skipped"`
	Sent                map[Channel]int `json:"sent"`
	Failed              map[Channel]int `json:"failed"`
	// Errors counts directory or ledger lookups that failed outside a channel attempt.
	Errors int `json:"errors"`
}

// NewReminderRunSummary returns an empty summary started at now.
func NewReminderRunSummary(now time.Time) *ReminderRunSummary {
	return &ReminderRunSummary{
		StartedAt: now,
		Sent:      map[Channel]int{},
		Failed:    map[Channel]int{},
	}
}

// TotalSent returns the number of successful sends across channels.
func (s *ReminderRunSummary) TotalSent() int {
	n := 0
	for _, v := range s.Sent {
		n += v
	}
	return n
}

// TotalFailed returns the number of failed sends across channels.
func (s *ReminderRunSummary) TotalFailed() int {
	n := 0
	for _, v := range s.Failed {
		n += v
	}
	return n
}

// ReminderScheduler runs reminder cycles.
type ReminderScheduler interface {
	// RunCycle performs one selection/dedup/dispatch pass for the given instant.
	RunCycle(ctx context.Context, now time.Time) (*ReminderRunSummary, error)
}

// RunLocker serialises work across processes.
type RunLocker interface {
	// TryLock acquires key for ttl. It returns ErrLockHeld if someone else owns it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, err error)
}
