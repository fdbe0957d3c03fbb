package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	common "github.com/yashrajoria/storefront/services/common/config"
	"github.com/yashrajoria/storefront/services/common/database"
	"github.com/yashrajoria/storefront/services/common/money"
	notifconfig "github.com/yashrajoria/storefront/services/notification-service/config"
	"github.com/yashrajoria/storefront/services/notification-service/dispatch"
)

type Config struct {
	common.Common
	dispatch.Config
	Postgres database.PostgresConfig `envconfig:"POSTGRES"`

	StripeSecretKey     string `envconfig:"STRIPE_API_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	PlatformFeeRate     string `envconfig:"PLATFORM_FEE_RATE" default:"0.03"`
	Currency            string `envconfig:"CHECKOUT_CURRENCY" default:"brl"`
	RateLimitPerMinute  int    `envconfig:"CHECKOUT_RATE_LIMIT_PER_MINUTE" default:"60"`

	// FeeRate is PlatformFeeRate parsed and range-checked.
	FeeRate decimal.Decimal `ignored:"true"`
}

func LoadConfig(ctx context.Context, sm awspkg.SecretGetter) (*Config, error) {
	cfg := &Config{}
	if err := common.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.UseSecrets && sm != nil {
		if err := common.Override(ctx, sm, "payment/DB_CREDENTIALS", map[string]*string{
			"POSTGRES_USER":     &cfg.Postgres.User,
			"POSTGRES_PASSWORD": &cfg.Postgres.Password,
			"POSTGRES_HOST":     &cfg.Postgres.Host,
		}); err != nil {
			return nil, err
		}
		if err := common.Override(ctx, sm, "payment/STRIPE", map[string]*string{
			"STRIPE_API_KEY":        &cfg.StripeSecretKey,
			"STRIPE_WEBHOOK_SECRET": &cfg.StripeWebhookSecret,
		}); err != nil {
			return nil, err
		}
		if cfg.Mode == dispatch.ModeQueue {
			if err := notifconfig.OverrideEmail(ctx, sm, &cfg.Config.Config); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_API_KEY and STRIPE_WEBHOOK_SECRET are required")
	}
	rate, err := money.ParseRate(cfg.PlatformFeeRate)
	if err != nil {
		return nil, fmt.Errorf("PLATFORM_FEE_RATE: %w", err)
	}
	cfg.FeeRate = rate
	cfg.Currency = strings.ToLower(cfg.Currency)
	if len(cfg.Currency) != 3 {
		return nil, fmt.Errorf("CHECKOUT_CURRENCY must be an ISO 4217 code, got %q", cfg.Currency)
	}
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
