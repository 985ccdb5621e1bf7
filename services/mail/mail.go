// Package mail sends the best-effort registration confirmation email.
package mail

import (
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	templates "github.com/mocagate/gating-api/templates/html"
)

// Mailer wraps the sendgrid client. A nil Mailer means email is not
// configured and sends are skipped.
type Mailer struct {
	apiKey string
}

// New returns a Mailer, or nil when no API key is configured
func New(apiKey string) *Mailer {
	if apiKey == "" {
		zap.S().Info("sendgrid api key not set, confirmation emails disabled")
		return nil
	}
	return &Mailer{apiKey: apiKey}
}

// SendConfirmation mails the registration confirmation. Failures are logged
// and never surfaced; the registration already succeeded.
func (m *Mailer) SendConfirmation(email string) {
	from := mail.NewEmail("Moca VIP Access", "no-reply@mocagate.io")
	to := mail.NewEmail(email, email)
	subject := "Your VIP registration is confirmed"
	htmlContent := templates.RenderConfirmationEmail(email)
	plainText := "Your VIP registration is confirmed. Welcome aboard!"

	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send confirmation email", "to", email, "error", err)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", email)
	}
}
