package services

import (
	"fmt"
	"strings"

	apperrors "github.com/yashrajoria/storefront/services/common/errors"
)

// checkDomain accepts a bare host with optional port, e.g. "loja.example.com:3000".
func checkDomain(domain string) error {
	if domain == "" {
		return apperrors.Validation("domain is required")
	}
	if strings.ContainsAny(domain, "/?#@ \t\r\n") {
		return apperrors.Validation("domain %q must be a bare host", domain)
	}
	return nil
}

func successURL(domain string) string {
	return fmt.Sprintf("http://%s/success?session_id={CHECKOUT_SESSION_ID}", domain)
}

func cancelURL(domain string) string {
	return fmt.Sprintf("http://%s/cart", domain)
}

func adminURL(domain string) string {
	return fmt.Sprintf("http://%s/admin", domain)
}
