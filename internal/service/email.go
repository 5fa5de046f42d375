package service

import (
	"context"
	"fmt"

	"atv-rental-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridEmailService struct {
	apiKey      string
	fromEmail   string
	fromName    string
	frontendURL string
}

// NewSendGridEmailService sends transactional email through SendGrid.
func NewSendGridEmailService(apiKey, fromEmail, fromName, frontendURL string) EmailService {
	return &sendgridEmailService{
		apiKey:      apiKey,
		fromEmail:   fromEmail,
		fromName:    fromName,
		frontendURL: frontendURL,
	}
}

func (s *sendgridEmailService) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *sendgridEmailService) SendVerificationEmail(ctx context.Context, email, name, token string) error {
	link := fmt.Sprintf("%s/verify-email/%s", s.frontendURL, token)
	subject := "Verify your email address"
	plainText := fmt.Sprintf("Hello %s,\n\nPlease verify your email address by visiting:\n\n%s\n\nThe ATV Rental Team", name, link)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>Please verify your email address by clicking <a href="%s">here</a>.</p><p>The ATV Rental Team</p>`, name, link)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *sendgridEmailService) SendPasswordResetEmail(ctx context.Context, email, name, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
	subject := "Reset your password"
	plainText := fmt.Sprintf("Hello %s,\n\nA password reset was requested for your account. Visit:\n\n%s\n\nIf you did not request this, you can ignore this message.\n\nThe ATV Rental Team", name, link)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>A password reset was requested for your account. Click <a href="%s">here</a> to choose a new password.</p><p>If you did not request this, you can ignore this message.</p><p>The ATV Rental Team</p>`, name, link)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *sendgridEmailService) SendRentalDecisionNotification(ctx context.Context, email, name, vehicleName string, approved bool) error {
	decision := "denied"
	if approved {
		decision = "approved"
	}
	subject := fmt.Sprintf("Your rental request was %s", decision)
	plainText := fmt.Sprintf("Hello %s,\n\nYour rental request for %s has been %s.\n\nThe ATV Rental Team", name, vehicleName, decision)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>Your rental request for <strong>%s</strong> has been <strong>%s</strong>.</p><p>The ATV Rental Team</p>`, name, vehicleName, decision)
	return s.send(email, name, subject, plainText, htmlContent)
}

// logEmailService is used when no SendGrid API key is configured; it
// logs instead of sending, which keeps local development mail-free.
type logEmailService struct{}

func NewLogEmailService() EmailService {
	return &logEmailService{}
}

func (s *logEmailService) SendVerificationEmail(ctx context.Context, email, name, token string) error {
	logger.Info("email suppressed (no SendGrid key)", "kind", "verification", "to", email)
	return nil
}

func (s *logEmailService) SendPasswordResetEmail(ctx context.Context, email, name, token string) error {
	logger.Info("email suppressed (no SendGrid key)", "kind", "password_reset", "to", email)
	return nil
}

func (s *logEmailService) SendRentalDecisionNotification(ctx context.Context, email, name, vehicleName string, approved bool) error {
	logger.Info("email suppressed (no SendGrid key)", "kind", "rental_decision", "to", email, "approved", approved)
	return nil
}
