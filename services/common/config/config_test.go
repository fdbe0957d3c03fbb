package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront/services/common/database"
)

type secrets map[string]string

func (s secrets) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}
	return "", errors.New("missing")
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	var cfg struct {
		Common
		FeeRate string `envconfig:"PLATFORM_FEE_RATE" default:"0.03"`
	}
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "0.03", cfg.FeeRate)
}

func TestOverride(t *testing.T) {
	sm := secrets{"payment/STRIPE": `{"STRIPE_API_KEY":"sk_live","OTHER":"x"}`}
	apiKey, webhook := "sk_env", "whsec_env"

	err := Override(context.Background(), sm, "payment/STRIPE", map[string]*string{
		"STRIPE_API_KEY":        &apiKey,
		"STRIPE_WEBHOOK_SECRET": &webhook,
	})
	require.NoError(t, err)
	assert.Equal(t, "sk_live", apiKey)
	assert.Equal(t, "whsec_env", webhook)

	assert.Error(t, Override(context.Background(), sm, "nope", nil))
}

func TestLoad_NestedPostgres(t *testing.T) {
	t.Setenv("POSTGRES_USER", "store")
	t.Setenv("POSTGRES_HOST", "db")

	var cfg struct {
		Common
		Postgres database.PostgresConfig `envconfig:"POSTGRES"`
	}
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "store", cfg.Postgres.User)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, "5432", cfg.Postgres.Port)
}
