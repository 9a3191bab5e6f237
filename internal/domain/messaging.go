package domain

import "context"

// MessageSender delivers a text message to a phone number over a messaging app.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// EventAssistant answers free-form questions using only the supplied event context.
type EventAssistant interface {
	Answer(ctx context.Context, eventContext, question string) (string, error)
}

// ChatService handles inbound messages from attendees.
type ChatService interface {
	// HandleIncoming answers the question of the attendee registered with phone.
	// It returns ErrNotFound when no attendee uses that phone number.
	HandleIncoming(ctx context.Context, phone, question string) error
}
