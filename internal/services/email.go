package services

import (
	"context"
	"fmt"
	"log"

	"cityevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendRequestConfirmed sends the participation-confirmed email using the
// "request_confirmed" template and the given data.
func (s *emailService) SendRequestConfirmed(ctx context.Context, data *domain.RequestConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("request confirmed data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("request_confirmed", data)
	if err != nil {
		return fmt.Errorf("failed to render request_confirmed template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	log.Printf("[EMAIL] Participation confirmation sent to %s", data.Email)
	return nil
}
