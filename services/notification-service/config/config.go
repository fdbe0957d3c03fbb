package config

import (
	"context"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	common "github.com/yashrajoria/storefront/services/common/config"
	"github.com/yashrajoria/storefront/services/common/database"
	"github.com/yashrajoria/storefront/services/notification-service/sender"
)

type Config struct {
	common.Common
	sender.Config
	Postgres database.PostgresConfig `envconfig:"POSTGRES"`

	FromAddress string `envconfig:"NOTIFICATION_FROM_ADDRESS" default:"orders@storefront.example"`
	QueueURL    string `envconfig:"SQS_QUEUE_URL"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
}

// LoadConfig reads the environment and, when AWS_USE_SECRETS is set, overrides
// credentials from Secrets Manager.
func LoadConfig(ctx context.Context, sm awspkg.SecretGetter) (*Config, error) {
	cfg := &Config{}
	if err := common.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.UseSecrets && sm != nil {
		if err := common.Override(ctx, sm, "notification/DB_CREDENTIALS", map[string]*string{
			"POSTGRES_USER":     &cfg.Postgres.User,
			"POSTGRES_PASSWORD": &cfg.Postgres.Password,
			"POSTGRES_HOST":     &cfg.Postgres.Host,
		}); err != nil {
			return nil, err
		}
		if err := OverrideEmail(ctx, sm, &cfg.Config); err != nil {
			return nil, err
		}
	}

	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OverrideEmail applies the notification/EMAIL secret to provider credentials.
func OverrideEmail(ctx context.Context, sm awspkg.SecretGetter, c *sender.Config) error {
	return common.Override(ctx, sm, "notification/EMAIL", map[string]*string{
		"RESEND_API_KEY": &c.ResendAPIKey,
		"SMTP_PASS":      &c.SMTP.Password,
	})
}
