package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"hirebot-backend/internal/logger"
)

type sendgridNotifier struct {
	apiKey     string
	fromEmail  string
	fromName   string
	adminEmail string
}

// NewSendGridNotifier builds an AdminNotifier that emails the admin.
func NewSendGridNotifier(apiKey, fromEmail, fromName, adminEmail string) AdminNotifier {
	return &sendgridNotifier{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		adminEmail: adminEmail,
	}
}

func (n *sendgridNotifier) Escalate(ctx context.Context, subject, body string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail("", n.adminEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(n.apiKey)
	logger.ExternalServiceCall("sendgrid", "send", "subject", subject)
	response, err := client.Send(message)
	logger.ExternalServiceResult("sendgrid", "send", err, "subject", subject)
	if err != nil {
		return fmt.Errorf("failed to send escalation email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// NopNotifier is used when no email settings are configured.
type NopNotifier struct{}

func (NopNotifier) Escalate(ctx context.Context, subject, body string) error {
	logger.Warn("Admin escalation without email configured", "subject", subject, "body", body)
	return nil
}
