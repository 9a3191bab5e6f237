package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventrio/internal/domain"
)

const (
	templateEventReminder            = "event_reminder"
	templateRegistrationConfirmation = "registration_confirmation"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger.With("component", "email")}
}

func (s *emailService) send(ctx context.Context, templateName, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return err
	}
	s.logger.Debug("email sent", "template", templateName, "to", to)
	return nil
}

// SendEventReminder sends the reminder message using the "event_reminder" template.
func (s *emailService) SendEventReminder(ctx context.Context, data *domain.EventReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("event reminder data is nil")
	}
	return s.send(ctx, templateEventReminder, data.Email, data)
}

// SendRegistrationConfirmation sends the "registration_confirmation" email.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	return s.send(ctx, templateRegistrationConfirmation, data.Email, data)
}
