package config

import (
	"context"
	"fmt"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	common "github.com/yashrajoria/storefront/services/common/config"
	"github.com/yashrajoria/storefront/services/common/database"
	notifconfig "github.com/yashrajoria/storefront/services/notification-service/config"
	"github.com/yashrajoria/storefront/services/notification-service/dispatch"
)

type Config struct {
	common.Common
	// Notification settings are read without a prefix, e.g. NOTIFICATION_MODE.
	dispatch.Config
	Postgres  database.PostgresConfig `envconfig:"POSTGRES"`
	JWTSecret string                  `envconfig:"JWT_SECRET"`
}

func LoadConfig(ctx context.Context, sm awspkg.SecretGetter) (*Config, error) {
	cfg := &Config{}
	if err := common.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.UseSecrets && sm != nil {
		if err := common.Override(ctx, sm, "order/DB_CREDENTIALS", map[string]*string{
			"POSTGRES_USER":     &cfg.Postgres.User,
			"POSTGRES_PASSWORD": &cfg.Postgres.Password,
			"POSTGRES_HOST":     &cfg.Postgres.Host,
		}); err != nil {
			return nil, err
		}
		if err := common.Override(ctx, sm, "auth/JWT_SECRET", map[string]*string{
			"JWT_SECRET": &cfg.JWTSecret,
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
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
