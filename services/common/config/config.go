// Package config loads service configuration from the environment, an optional
// .env file, and (when enabled) AWS Secrets Manager.
package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
)

// Common is embedded by every service config.
type Common struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	Env            string   `envconfig:"APP_ENV" default:"development"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	UseSecrets     bool     `envconfig:"AWS_USE_SECRETS" default:"false"`
	CloudWatch     bool     `envconfig:"CLOUDWATCH_ENABLED" default:"false"`
	LogGroup       string   `envconfig:"CLOUDWATCH_LOG_GROUP" default:"/storefront/services"`
	MetricsNS      string   `envconfig:"CLOUDWATCH_NAMESPACE" default:"Storefront"`
}

// Load fills cfg from the environment after loading .env if present.
func Load(cfg interface{}) error {
	_ = godotenv.Load()
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Override copies keys of the JSON secret name into the mapped fields.
// Keys missing from the secret leave the field untouched.
func Override(ctx context.Context, sm awspkg.SecretGetter, name string, fields map[string]*string) error {
	values, err := awspkg.GetSecretJSON(ctx, sm, name)
	if err != nil {
		return err
	}
	for key, dst := range fields {
		if v, ok := values[key]; ok && v != "" {
			*dst = v
		}
	}
	return nil
}
