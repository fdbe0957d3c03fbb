package config

import (
	"context"
	"fmt"
	"time"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	common "github.com/yashrajoria/storefront/services/common/config"
)

type Config struct {
	common.Common
	RedisURL          string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	CartTTL           time.Duration `envconfig:"CART_TTL" default:"168h"`
	PaymentServiceURL string        `envconfig:"PAYMENT_SERVICE_URL" default:"http://localhost:8087"`
	RateLimit         int           `envconfig:"CART_RATE_LIMIT_PER_MINUTE" default:"120"`
}

func LoadConfig(ctx context.Context, sm awspkg.SecretGetter) (*Config, error) {
	cfg := &Config{}
	if err := common.Load(cfg); err != nil {
		return nil, err
	}
	if cfg.UseSecrets && sm != nil {
		if err := common.Override(ctx, sm, "cart/REDIS", map[string]*string{
			"REDIS_URL": &cfg.RedisURL,
		}); err != nil {
			return nil, err
		}
	}
	if cfg.CartTTL <= 0 {
		return nil, fmt.Errorf("CART_TTL must be positive, got %s", cfg.CartTTL)
	}
	return cfg, nil
}
