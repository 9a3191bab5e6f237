package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventrio/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Event
	listErr error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event)}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(_ context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if other.RegistrationLink == e.RegistrationLink {
			return domain.ErrDuplicate
		}
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByRegistrationLink(_ context.Context, link string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.RegistrationLink == link {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) sorted(keep func(*domain.Event) bool) []*domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Event{}
	for _, e := range f.byID {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeEventRepo) ListByCreatorID(_ context.Context, creatorID string) ([]*domain.Event, error) {
	return f.sorted(func(e *domain.Event) bool { return e.CreatorID == creatorID }), nil
}

func (f *fakeEventRepo) List(_ context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	all := f.sorted(func(*domain.Event) bool { return true })
	start := min(p.Offset(), len(all))
	end := min(start+p.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeEventRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	lo, hi := from.Format(domain.DateLayout), to.Format(domain.DateLayout)
	return f.sorted(func(e *domain.Event) bool {
		d := e.DateString()
		return d >= lo && d <= hi
	}), nil
}

func (f *fakeEventRepo) Update(_ context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Time != nil {
		e.Time = *upd.Time
	}
	return e, nil
}

func (f *fakeEventRepo) SetFlyerURL(_ context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.FlyerURL = url
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeAttendeeRepo is an in-memory AttendeeRepository for tests.
type fakeAttendeeRepo struct {
	mu      sync.Mutex
	list    []*domain.Attendee
	listErr map[string]error
}

func (f *fakeAttendeeRepo) Create(_ context.Context, a *domain.Attendee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.list {
		if other.EventID == a.EventID && other.Email == a.Email {
			return fmt.Errorf("%w: attendees_event_id_email_key", domain.ErrDuplicate)
		}
	}
	a.ID = fmt.Sprintf("att-%d", len(f.list)+1)
	f.list = append(f.list, a)
	return nil
}

func (f *fakeAttendeeRepo) GetByID(_ context.Context, id string) (*domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.list {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAttendeeRepo) ListByEventID(_ context.Context, eventID string) ([]*domain.Attendee, error) {
	if err := f.listErr[eventID]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Attendee{}
	for _, a := range f.list {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttendeeRepo) GetLatestByPhone(_ context.Context, phone string) (*domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.Attendee
	for _, a := range f.list {
		if a.PhoneNumber == phone && (latest == nil || a.RegisteredAt.After(latest.RegisteredAt)) {
			latest = a
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// fakeReminderRepo is an in-memory ReminderRepository that enforces the (attendee, channel, day) key.
type fakeReminderRepo struct {
	mu        sync.Mutex
	entries   []*domain.Reminder
	days      []string
	createErr error
	readErr   error
}

func (f *fakeReminderRepo) Create(_ context.Context, r *domain.Reminder, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	d := day.Format(domain.DateLayout)
	for i, e := range f.entries {
		if e.AttendeeID == r.AttendeeID && e.Channel == r.Channel && f.days[i] == d {
			return domain.ErrDuplicate
		}
	}
	r.ID = fmt.Sprintf("rem-%d", len(f.entries)+1)
	f.entries = append(f.entries, r)
	f.days = append(f.days, d)
	return nil
}

func (f *fakeReminderRepo) between(attendeeID string, from, to time.Time) []*domain.Reminder {
	var out []*domain.Reminder
	for _, e := range f.entries {
		if e.AttendeeID == attendeeID && !e.SentAt.Before(from) && e.SentAt.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeReminderRepo) ExistsForAttendeeBetween(_ context.Context, attendeeID string, from, to time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return false, f.readErr
	}
	return len(f.between(attendeeID, from, to)) > 0, nil
}

func (f *fakeReminderRepo) ListChannelsForAttendeeBetween(_ context.Context, attendeeID string, from, to time.Time) ([]domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []domain.Channel
	for _, e := range f.between(attendeeID, from, to) {
		out = append(out, e.Channel)
	}
	return out, nil
}

func (f *fakeReminderRepo) ListByAttendeeID(_ context.Context, attendeeID string) ([]*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Reminder{}
	for _, e := range f.entries {
		if e.AttendeeID == attendeeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) byChannel(attendeeID string, ch domain.Channel) []*domain.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Reminder
	for _, e := range f.entries {
		if e.AttendeeID == attendeeID && e.Channel == ch {
			out = append(out, e)
		}
	}
	return out
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	mu            sync.Mutex
	reminders     []*domain.EventReminderEmailData
	confirmations []*domain.RegistrationConfirmationEmailData
	err           error
}

func (f *fakeEmailService) SendEventReminder(_ context.Context, data *domain.EventReminderEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return &domain.DeliveryError{Channel: domain.ChannelEmail, Recipient: data.Email, Err: f.err}
	}
	f.reminders = append(f.reminders, data)
	return nil
}

func (f *fakeEmailService) SendRegistrationConfirmation(_ context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, data)
	return nil
}

type sentMessage struct {
	to, body string
}

// fakeMessenger records WhatsApp messages.
type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) SendMessage(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return &domain.DeliveryError{Channel: domain.ChannelWhatsApp, Recipient: to, Err: f.err}
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return nil
}
