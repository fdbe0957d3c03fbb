package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantID_RoundTrip(t *testing.T) {
	p, err := NewTokenParser("test-secret")
	require.NoError(t, err)

	tok, err := p.IssueTenantToken(7, time.Hour)
	require.NoError(t, err)

	tenantID, err := p.TenantID(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tenantID)
}

func TestTenantID_Rejects(t *testing.T) {
	p, _ := NewTokenParser("test-secret")
	other, _ := NewTokenParser("other-secret")

	foreign, _ := other.IssueTenantToken(7, time.Hour)
	_, err := p.TenantID(foreign)
	assert.Error(t, err)

	expired, _ := p.IssueTenantToken(7, -time.Minute)
	_, err = p.TenantID(expired)
	assert.Error(t, err)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"tenant_id": 7, "typ": "refresh"})
	s, _ := refresh.SignedString([]byte("test-secret"))
	_, err = p.TenantID(s)
	assert.Error(t, err)

	noTenant := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"typ": "access"})
	s, _ = noTenant.SignedString([]byte("test-secret"))
	_, err = p.TenantID(s)
	assert.Error(t, err)
}

func TestNewTokenParser_EmptySecret(t *testing.T) {
	_, err := NewTokenParser("  ")
	assert.Error(t, err)
}
