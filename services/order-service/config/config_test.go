package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront/services/notification-service/dispatch"
)

func TestLoadConfig_ReadsNotificationSettingsWithoutPrefix(t *testing.T) {
	t.Setenv("POSTGRES_USER", "orders")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("NOTIFICATION_MODE", "sns")
	t.Setenv("NOTIFICATION_SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:000000000000:order-events")

	cfg, err := LoadConfig(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, dispatch.ModeSNS, cfg.Mode)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:order-events", cfg.TopicArn)
	assert.Equal(t, "orders", cfg.Postgres.User)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("POSTGRES_USER", "orders")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(context.Background(), nil)
	assert.Error(t, err)
}
