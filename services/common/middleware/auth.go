package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/services/common/auth"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
)

// TenantIDKey is where TenantAuth stores the authenticated tenant id.
const TenantIDKey = "tenant_id"

// TenantAuth requires a Bearer admin token and stores its tenant id in the context.
func TenantAuth(parser *auth.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			apperrors.Respond(c, apperrors.New(apperrors.KindUnauthorized, "missing bearer token", nil))
			return
		}

		tenantID, err := parser.TenantID(token)
		if err != nil {
			apperrors.Respond(c, apperrors.New(apperrors.KindUnauthorized, "invalid token", err))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// TenantID returns the tenant set by TenantAuth.
func TenantID(c *gin.Context) int64 {
	return c.GetInt64(TenantIDKey)
}
