package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TenantClaimsKey is the claim carrying the tenant a store admin belongs to.
const TenantClaimsKey = "tenant_id"

// TokenParser validates HMAC-signed admin tokens.
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) (*TokenParser, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}
	return &TokenParser{secret: []byte(secret)}, nil
}

// ParseAndValidateToken parses a JWT token string and returns its claims.
// If expectedType is non-empty, the claim "typ" must match it.
func (p *TokenParser) ParseAndValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}
	return claims, nil
}

// TenantID returns the tenant id of a validated admin access token.
func (p *TokenParser) TenantID(tokenStr string) (int64, error) {
	claims, err := p.ParseAndValidateToken(tokenStr, "access")
	if err != nil {
		return 0, err
	}
	// MapClaims decodes JSON numbers as float64.
	raw, ok := claims[TenantClaimsKey].(float64)
	if !ok || raw <= 0 || raw != float64(int64(raw)) {
		return 0, fmt.Errorf("token has no valid %s claim", TenantClaimsKey)
	}
	return int64(raw), nil
}

// IssueTenantToken signs an access token for a store admin. The admin login
// flow lives outside this repo; the migrate tool and tests use this.
func (p *TokenParser) IssueTenantToken(tenantID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		TenantClaimsKey: tenantID,
		"typ":           "access",
		"iat":           now.Unix(),
		"exp":           now.Add(ttl).Unix(),
	})
	return token.SignedString(p.secret)
}
