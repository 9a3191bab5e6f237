package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventrio/internal/domain"
)

const (
	registrationSuffixLength = 8
	registrationLinkAttempts = 3
	// MaxFlyerSize bounds uploaded flyer images.
	MaxFlyerSize = 5 << 20
)

var registrationAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

var flyerExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type eventService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	reminderRepo   domain.ReminderRepository
	storage        domain.FileStorage
	contextTimeout time.Duration
}

// NewEventService returns the creator-facing EventService. storage may be nil when uploads are disabled.
func NewEventService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	reminderRepo domain.ReminderRepository,
	storage domain.FileStorage,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		reminderRepo:   reminderRepo,
		storage:        storage,
		contextTimeout: timeout,
	}
}

func generateRegistrationSuffix() (string, error) {
	b := make([]rune, registrationSuffixLength)
	max := big.NewInt(int64(len(registrationAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = registrationAlphabet[n.Int64()]
	}
	return string(b), nil
}

func validateEvent(e *domain.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	e.Location = strings.TrimSpace(e.Location)
	e.Description = strings.TrimSpace(e.Description)
	if e.Title == "" {
		return domain.InvalidInputError("title is required")
	}
	if e.Location == "" {
		return domain.InvalidInputError("location is required")
	}
	if e.Date.IsZero() {
		return domain.InvalidInputError("date is required")
	}
	return validateTime(e.Time)
}

func validateTime(at string) error {
	if _, err := time.Parse(domain.TimeLayout, at); err != nil {
		return domain.InvalidInputError("time must be HH:MM")
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CreatorID == "" {
		return domain.InvalidInputError("event creator is required")
	}
	if err := validateEvent(event); err != nil {
		return err
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		event.ID = uuid.NewString()
		suffix, err := generateRegistrationSuffix()
		if err != nil {
			return fmt.Errorf("generate registration link: %w", err)
		}
		event.RegistrationLink = event.ID + "-" + suffix
		err = s.eventRepo.Create(ctx, event)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt == registrationLinkAttempts {
			return fmt.Errorf("create event: %w", err)
		}
	}
}

// ownedEvent loads the event and checks that callerID created it.
func (s *eventService) ownedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.ownedEvent(ctx, eventID, callerID)
}

func (s *eventService) ListMyEvents(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByCreatorID(ctx, creatorID)
}

func (s *eventService) ListPublicEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.List(ctx, params.Normalize())
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.InvalidInputError("title cannot be empty")
	}
	if upd.Location != nil && strings.TrimSpace(*upd.Location) == "" {
		return nil, domain.InvalidInputError("location cannot be empty")
	}
	if upd.Time != nil {
		if err := validateTime(*upd.Time); err != nil {
			return nil, err
		}
	}
	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, eventID)
}

func (s *eventService) UploadFlyer(ctx context.Context, eventID, callerID string, flyer *domain.FlyerUpload) (*domain.Event, error) {
	if s.storage == nil {
		return nil, domain.InvalidInputError("flyer uploads are not configured")
	}
	if flyer == nil || len(flyer.Body) == 0 {
		return nil, domain.InvalidInputError("flyer file is required")
	}
	if len(flyer.Body) > MaxFlyerSize {
		return nil, domain.InvalidInputError("flyer must be at most %d MiB", MaxFlyerSize>>20)
	}
	contentType := http.DetectContentType(flyer.Body)
	ext, ok := flyerExtensions[contentType]
	if !ok {
		return nil, domain.InvalidInputError("flyer must be a JPEG, PNG, GIF or WebP image")
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	key := path.Join("events", eventID, "flyer-"+uuid.NewString()+ext)
	url, err := s.storage.Put(ctx, key, contentType, flyer.Body)
	if err != nil {
		return nil, fmt.Errorf("store flyer: %w", err)
	}
	if err := s.eventRepo.SetFlyerURL(ctx, eventID, url); err != nil {
		return nil, fmt.Errorf("save flyer url: %w", err)
	}
	return s.eventRepo.GetByID(ctx, eventID)
}

func (s *eventService) ListAttendees(ctx context.Context, eventID, callerID string) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	return s.attendeeRepo.ListByEventID(ctx, eventID)
}

func (s *eventService) ListAttendeeReminders(ctx context.Context, eventID, attendeeID, callerID string) ([]*domain.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	attendee, err := s.attendeeRepo.GetByID(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	if attendee.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return s.reminderRepo.ListByAttendeeID(ctx, attendeeID)
}
