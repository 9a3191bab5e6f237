package domain

import (
	"context"
	"encoding/json"
	"time"
)

// DateLayout and TimeLayout are the wire formats of Event.Date and Event.Time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event represents a scheduled happening owned by a creator.
// swagger:model Event
type Event struct {
	ID               string    `json:"id"`
	CreatorID        string    `json:"creator_id"`
	Creator          string    `json:"creator,omitempty"`
	CreatorPhone     string    `json:"creator_phone,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	Date             time.Time `json:"-"`
	Time             string    `json:"time"`
	FlyerURL         string    `json:"flyer,omitempty"`
	RegistrationLink string    `json:"registration_link"`
	AttendeeCount    int       `json:"attendee_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DateString returns the calendar date in DateLayout.
func (e Event) DateString() string {
	return e.Date.Format(DateLayout)
}

// MarshalJSON renders Date as a calendar date.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(e), Date: e.DateString()})
}

// NewEvent returns a new Event. ID and RegistrationLink are set by the event service on create.
func NewEvent(creatorID, title, description, location string, date time.Time, at string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		CreatorID:   creatorID,
		Title:       title,
		Description: description,
		Location:    location,
		Date:        date,
		Time:        at,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventUpdate carries the optional fields of a partial event update.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	Date        *time.Time
	Time        *string
}

// Empty reports whether no field is set.
func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Location == nil && u.Date == nil && u.Time == nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByRegistrationLink(ctx context.Context, link string) (*Event, error)
	ListByCreatorID(ctx context.Context, creatorID string) ([]*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	// ListByDateRange returns events whose date falls in [from, to], both inclusive calendar dates.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Event, error)
	Update(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	SetFlyerURL(ctx context.Context, eventID, url string) error
	Delete(ctx context.Context, id string) error
}

// FlyerUpload is an image uploaded for an event.
type FlyerUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        []byte
}

// FileStorage stores public files and returns their URL.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (url string, err error)
}

// EventService defines creator-facing event management.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	ListMyEvents(ctx context.Context, creatorID string) ([]*Event, error)
	ListPublicEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	UploadFlyer(ctx context.Context, eventID, callerID string, flyer *FlyerUpload) (*Event, error)
	ListAttendees(ctx context.Context, eventID, callerID string) ([]*Attendee, error)
	ListAttendeeReminders(ctx context.Context, eventID, attendeeID, callerID string) ([]*Reminder, error)
}
