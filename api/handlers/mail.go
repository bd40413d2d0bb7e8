package handlers

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer sends a single transactional e-mail
type Mailer interface {
	Send(toName, toEmail, subject, plainText, htmlContent string) error
}

// SendGridMailer sends e-mails through the SendGrid v3 API
type SendGridMailer struct {
	APIKey string
	From   string
}

// Send implements Mailer
func (m SendGridMailer) Send(toName, toEmail, subject, plainText, htmlContent string) error {
	from := mail.NewEmail("Wheelhub", m.From)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(m.APIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", toEmail)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	return nil
}
