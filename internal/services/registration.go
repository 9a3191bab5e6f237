package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventrio/internal/domain"
)

type registrationService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRegistrationService returns the public, link-based RegistrationService.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		emailService:   emailService,
		logger:         logger.With("component", "registration"),
		contextTimeout: timeout,
	}
}

func (s *registrationService) GetEventByLink(ctx context.Context, link string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	link = strings.TrimSpace(link)
	if link == "" {
		return nil, domain.ErrNotFound
	}
	return s.eventRepo.GetByRegistrationLink(ctx, link)
}

func (s *registrationService) Register(ctx context.Context, link string, in domain.RegistrationInput) (*domain.Attendee, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidInputError("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	event, err := s.GetEventByLink(ctx, link)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attendee := domain.NewAttendee(event.ID, name, email, strings.TrimSpace(in.PhoneNumber), time.Now())
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email is already registered for this event", domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("create attendee: %w", err)
	}

	err = s.emailService.SendRegistrationConfirmation(ctx, &domain.RegistrationConfirmationEmailData{
		Email:      attendee.Email,
		Name:       attendee.Name,
		EventTitle: event.Title,
		EventDate:  event.DateString(),
		EventTime:  event.Time,
		Location:   event.Location,
	})
	if err != nil {
		s.logger.Warn("registration confirmation not sent", "attendee_id", attendee.ID, "event_id", event.ID, "error", err)
	}
	return attendee, nil
}
