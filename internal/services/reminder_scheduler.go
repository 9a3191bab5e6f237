package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/errgroup"

	"eventrio/internal/domain"
)

const reminderLockKey = "reminders:cycle"

// ReminderConfig controls a reminder cycle.
type ReminderConfig struct {
	// WindowStartDays and WindowEndDays bound the selected event dates relative to today, inclusive.
	WindowStartDays int
	WindowEndDays   int
	DedupScope      domain.DedupScope
	// Workers caps how many attendees are processed concurrently.
	Workers  int
	Location *time.Location
	LockTTL  time.Duration
	// Clock stamps ledger entries and decides which day the dedup checks. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultReminderConfig selects events one to four days out with attendee-level dedup.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		WindowStartDays: 1,
		WindowEndDays:   4,
		DedupScope:      domain.DedupPerAttendee,
		Workers:         4,
		Location:        time.UTC,
		LockTTL:         30 * time.Minute,
		Clock:           time.Now,
	}
}

func (c ReminderConfig) withDefaults() ReminderConfig {
	d := DefaultReminderConfig()
	if c.Location == nil {
		c.Location = d.Location
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.DedupScope != domain.DedupPerChannel {
		c.DedupScope = domain.DedupPerAttendee
	}
	if c.Clock == nil {
		c.Clock = d.Clock
	}
	if c.LockTTL <= 0 {
		c.LockTTL = d.LockTTL
	}
	if c.WindowEndDays < c.WindowStartDays {
		c.WindowEndDays = c.WindowStartDays
	}
	return c
}

type reminderMetrics struct {
	sent    metric.Int64Counter
	failed  metric.Int64Counter
	skipped metric.Int64Counter
}

func newReminderMetrics(logger *slog.Logger) reminderMetrics {
	meter := otel.Meter("eventrio/reminders")
	return reminderMetrics{
		sent:    int64Counter(meter, logger, "eventrio.reminders.sent", "Reminders delivered and recorded"),
		failed:  int64Counter(meter, logger, "eventrio.reminders.failed", "Reminder channel attempts that failed"),
		skipped: int64Counter(meter, logger, "eventrio.reminders.skipped", "Attendees skipped by the daily dedup"),
	}
}

// int64Counter falls back to a no-op counter when the meter rejects the instrument.
func int64Counter(meter metric.Meter, logger *slog.Logger, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		logger.Warn("create metric instrument", "name", name, "error", err)
		c, _ = noop.Meter{}.Int64Counter(name)
	}
	return c
}

type reminderScheduler struct {
	events    domain.EventRepository
	attendees domain.AttendeeRepository
	ledger    domain.ReminderLedger
	email     domain.EmailService
	messenger domain.MessageSender
	locker    domain.RunLocker
	cfg       ReminderConfig
	logger    *slog.Logger
	metrics   reminderMetrics
}

// NewReminderScheduler wires the reminder engine. locker may be nil when runs are serialised by the caller.
func NewReminderScheduler(
	events domain.EventRepository,
	attendees domain.AttendeeRepository,
	ledger domain.ReminderLedger,
	email domain.EmailService,
	messenger domain.MessageSender,
	locker domain.RunLocker,
	cfg ReminderConfig,
	logger *slog.Logger,
) domain.ReminderScheduler {
	logger = logger.With("component", "reminders")
	return &reminderScheduler{
		events:    events,
		attendees: attendees,
		ledger:    ledger,
		email:     email,
		messenger: messenger,
		locker:    locker,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		metrics:   newReminderMetrics(logger),
	}
}

// tally is the concurrency-safe accumulator behind a run summary.
type tally struct {
	mu  sync.Mutex
	sum *domain.ReminderRunSummary
}

func (t *tally) update(fn func(s *domain.ReminderRunSummary)) {
	t.mu.Lock()
	fn(t.sum)
	t.mu.Unlock()
}

// window returns the first and last selected calendar dates for now.
func (s *reminderScheduler) window(now time.Time) (time.Time, time.Time) {
	y, m, d := now.In(s.cfg.Location).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, s.cfg.Location)
	return today.AddDate(0, 0, s.cfg.WindowStartDays), today.AddDate(0, 0, s.cfg.WindowEndDays)
}

func (s *reminderScheduler) RunCycle(ctx context.Context, now time.Time) (*domain.ReminderRunSummary, error) {
	if s.locker != nil {
		unlock, err := s.locker.TryLock(ctx, reminderLockKey, s.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				s.logger.Info("reminder cycle already running elsewhere, skipping")
			}
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("release run lock", "error", err)
			}
		}()
	}

	started := time.Now()
	from, to := s.window(now)
	summary := domain.NewReminderRunSummary(now)
	summary.WindowFrom = from.Format(domain.DateLayout)
	summary.WindowTo = to.Format(domain.DateLayout)

	events, err := s.events.ListByDateRange(ctx, from, to)
	if err != nil {
		summary.FinishedAt = now.Add(time.Since(started))
		return summary, fmt.Errorf("list events %s..%s: %w", summary.WindowFrom, summary.WindowTo, err)
	}
	summary.EventsSelected = len(events)

	t := &tally{sum: summary}
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	seen := make(map[string]bool)

	for _, e := range events {
		if ctx.Err() != nil {
			break
		}
		attendees, err := s.attendees.ListByEventID(ctx, e.ID)
		if err != nil {
			s.logger.Error("list attendees", "event_id", e.ID, "error", err)
			t.update(func(sum *domain.ReminderRunSummary) { sum.Errors++ })
			continue
		}
		days := DaysUntil(e.Date, now, s.cfg.Location)
		message := FormatReminderMessage(e, days)
		for _, a := range attendees {
			// One worker owns each attendee for the whole run.
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			t.update(func(sum *domain.ReminderRunSummary) { sum.AttendeesConsidered++ })
			g.Go(func() error {
				s.remindAttendee(ctx, t, e, a, message)
				return nil
			})
		}
	}
	_ = g.Wait()

	summary.FinishedAt = now.Add(time.Since(started))
	s.logger.Info("reminder cycle finished",
		"window_from", summary.WindowFrom,
		"window_to", summary.WindowTo,
		"events", summary.EventsSelected,
		"attendees", summary.AttendeesConsidered,
		"sent", summary.TotalSent(),
		"failed", summary.TotalFailed(),
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"duration", time.Since(started),
	)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("reminder cycle interrupted: %w", err)
	}
	return summary, nil
}

// pendingChannels returns the channels still to attempt for a on the day of at, or nil when the attendee is skipped.
func (s *reminderScheduler) pendingChannels(ctx context.Context, a *domain.Attendee, at time.Time) ([]domain.Channel, error) {
	channels := []domain.Channel{domain.ChannelEmail}
	if strings.TrimSpace(a.PhoneNumber) != "" {
		channels = append(channels, domain.ChannelWhatsApp)
	}

	if s.cfg.DedupScope == domain.DedupPerAttendee {
		sent, err := s.ledger.HasSentToday(ctx, a.ID, at)
		if err != nil || sent {
			return nil, err
		}
		return channels, nil
	}

	done, err := s.ledger.ChannelsSentToday(ctx, a.ID, at)
	if err != nil {
		return nil, err
	}
	pending := channels[:0]
	for _, c := range channels {
		covered := false
		for _, d := range done {
			if c == d {
				covered = true
				break
			}
		}
		if !covered {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func (s *reminderScheduler) remindAttendee(ctx context.Context, t *tally, e *domain.Event, a *domain.Attendee, message string) {
	log := s.logger.With("event_id", e.ID, "attendee_id", a.ID)

	channels, err := s.pendingChannels(ctx, a, s.cfg.Clock())
	if err != nil {
		log.Error("dedup lookup failed, attendee left for the next run", "error", err)
		t.update(func(sum *domain.ReminderRunSummary) { sum.Errors++ })
		return
	}
	if len(channels) == 0 {
		log.Debug("already reminded today")
		s.metrics.skipped.Add(ctx, 1)
		t.update(func(sum *domain.ReminderRunSummary) { sum.Skipped++ })
		return
	}

	for _, ch := range channels {
		attrs := metric.WithAttributes(attribute.String("channel", string(ch)))
		if err := s.send(ctx, ch, e, a, message); err != nil {
			log.Warn("reminder not delivered", "channel", ch, "error", err)
			s.metrics.failed.Add(ctx, 1, attrs)
			t.update(func(sum *domain.ReminderRunSummary) { sum.Failed[ch]++ })
			continue
		}
		if _, err := s.ledger.Record(ctx, a.ID, message, ch, s.cfg.Clock()); err != nil {
			log.Error("reminder delivered but not recorded", "channel", ch, "error", err)
			s.metrics.failed.Add(ctx, 1, attrs)
			t.update(func(sum *domain.ReminderRunSummary) { sum.Failed[ch]++ })
			continue
		}
		s.metrics.sent.Add(ctx, 1, attrs)
		t.update(func(sum *domain.ReminderRunSummary) { sum.Sent[ch]++ })
	}
}

func (s *reminderScheduler) send(ctx context.Context, ch domain.Channel, e *domain.Event, a *domain.Attendee, message string) error {
	switch ch {
	case domain.ChannelEmail:
		return s.email.SendEventReminder(ctx, &domain.EventReminderEmailData{
			Email:      a.Email,
			Name:       a.Name,
			EventTitle: e.Title,
			Message:    message,
		})
	case domain.ChannelWhatsApp:
		return s.messenger.SendMessage(ctx, a.PhoneNumber, message)
	default:
		return fmt.Errorf("unsupported channel %q", ch)
	}
}
