package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RequestConfirmedEmailData holds data for the participation-confirmed email.
type RequestConfirmedEmailData struct {
	Email      string
	Name       string
	EventTitle string
	EventDate  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRequestConfirmed(ctx context.Context, data *RequestConfirmedEmailData) error
}
