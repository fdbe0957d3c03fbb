package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/yashrajoria/storefront/services/notification-service/models"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender hands a rendered message to an email provider.
type EmailSender interface {
	Send(ctx context.Context, msg models.Message) (SendResult, error)
}

// Config selects and configures the email provider.
type Config struct {
	Provider     string     `envconfig:"EMAIL_PROVIDER" default:"resend"`
	ResendAPIKey string     `envconfig:"RESEND_API_KEY"`
	SMTP         SMTPConfig `envconfig:"SMTP"`
}

func (c Config) Validate() error {
	switch c.Provider {
	case "resend", "smtp":
		return nil
	}
	return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Provider)
}

// New builds the configured provider.
func New(c Config) (EmailSender, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Provider == "smtp" {
		return NewSMTPSender(c.SMTP)
	}
	return NewResendSender(c.ResendAPIKey)
}
