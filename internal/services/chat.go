package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventrio/internal/domain"
)

type chatService struct {
	attendeeRepo   domain.AttendeeRepository
	eventRepo      domain.EventRepository
	assistant      domain.EventAssistant
	messenger      domain.MessageSender
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewChatService answers inbound WhatsApp questions about the asker's most recent event.
func NewChatService(
	attendeeRepo domain.AttendeeRepository,
	eventRepo domain.EventRepository,
	assistant domain.EventAssistant,
	messenger domain.MessageSender,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ChatService {
	return &chatService{
		attendeeRepo:   attendeeRepo,
		eventRepo:      eventRepo,
		assistant:      assistant,
		messenger:      messenger,
		logger:         logger.With("component", "chat"),
		contextTimeout: timeout,
	}
}

// EventContext renders the event facts the assistant may answer from.
func EventContext(e *domain.Event) string {
	return fmt.Sprintf("Event: %s\nDescription: %s\nDate: %s\nTime: %s\nLocation: %s",
		e.Title, e.Description, e.DateString(), e.Time, e.Location)
}

func (s *chatService) HandleIncoming(ctx context.Context, phone, question string) error {
	phone = strings.TrimSpace(phone)
	question = strings.TrimSpace(question)
	if phone == "" || question == "" {
		return domain.InvalidInputError("from and message are required")
	}
	if s.assistant == nil {
		return fmt.Errorf("event assistant is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attendee, err := s.attendeeRepo.GetLatestByPhone(ctx, phone)
	if err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(ctx, attendee.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	answer, err := s.assistant.Answer(ctx, EventContext(event), question)
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}
	if err := s.messenger.SendMessage(ctx, phone, answer); err != nil {
		return err
	}
	s.logger.Info("answered attendee question", "attendee_id", attendee.ID, "event_id", event.ID)
	return nil
}
