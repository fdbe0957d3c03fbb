package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "payments")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("STRIPE_API_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("RESEND_API_KEY", "re_123")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "0.03", cfg.FeeRate.String())
	assert.Equal(t, "brl", cfg.Currency)
	assert.Equal(t, "queue", cfg.Mode)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestLoadConfig_RejectsBadFeeRate(t *testing.T) {
	setRequired(t)
	t.Setenv("PLATFORM_FEE_RATE", "1.5")

	_, err := LoadConfig(context.Background(), nil)
	assert.Error(t, err)
}

func TestLoadConfig_RequiresStripeKeys(t *testing.T) {
	setRequired(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	_, err := LoadConfig(context.Background(), nil)
	assert.Error(t, err)
}

func TestLoadConfig_NormalizesCurrency(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECKOUT_CURRENCY", "USD")

	cfg, err := LoadConfig(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "usd", cfg.Currency)
}
