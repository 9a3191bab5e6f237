package domain

import (
	"context"
	"time"
)

// Attendee is a person registered for one event through its registration link.
// swagger:model Attendee
type Attendee struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewAttendee returns a new Attendee. ID is typically set by the repository on create.
func NewAttendee(eventID, name, email, phoneNumber string, registeredAt time.Time) *Attendee {
	return &Attendee{
		EventID:      eventID,
		Name:         name,
		Email:        email,
		PhoneNumber:  phoneNumber,
		RegisteredAt: registeredAt,
	}
}

// AttendeeRepository defines storage operations for attendees.
type AttendeeRepository interface {
	// Create returns ErrDuplicate when the email is already registered for the event.
	Create(ctx context.Context, a *Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Attendee, error)
	// GetLatestByPhone returns the most recent registration made with the phone number.
	GetLatestByPhone(ctx context.Context, phone string) (*Attendee, error)
}

// RegistrationInput is the validated payload of a public registration.
type RegistrationInput struct {
	Name        string
	Email       string
	PhoneNumber string
}

// RegistrationService defines the public, link-based registration flow.
type RegistrationService interface {
	GetEventByLink(ctx context.Context, link string) (*Event, error)
	Register(ctx context.Context, link string, in RegistrationInput) (*Attendee, error)
}
