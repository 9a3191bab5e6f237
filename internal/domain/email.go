package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventReminderEmailData holds data for the event reminder email.
type EventReminderEmailData struct {
	Email      string
	Name       string
	EventTitle string
	Message    string
}

// RegistrationConfirmationEmailData holds data for the registration confirmation email.
type RegistrationConfirmationEmailData struct {
	Email      string
	Name       string
	EventTitle string
	EventDate  string
	EventTime  string
	Location   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventReminder(ctx context.Context, data *EventReminderEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
}
