package models

import (
	"github.com/shopspring/decimal"
)

// CartItem is a cart line as submitted by the storefront.
type CartItem struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	TenantID  int64           `json:"tenant_id"`
}

type CheckoutRequest struct {
	Items    []CartItem `json:"cart_items"`
	TenantID int64      `json:"tenant_id" binding:"required"`
	Domain   string     `json:"domain" binding:"required"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url,omitempty"`
}

type OnboardingRequest struct {
	TenantID int64  `json:"tenant_id" binding:"required"`
	Domain   string `json:"domain" binding:"required"`
}

type OnboardingResponse struct {
	SetupURL string `json:"setup_url"`
}

// Metadata keys written on the hosted session and read back from the webhook.
const (
	MetadataTenantID  = "tenant_id"
	MetadataCartItems = "cart_items"
	MetadataCurrency  = "currency"
)

// WebhookStatus is reported back to the processor in the response body.
type WebhookStatus string

const (
	WebhookProcessed WebhookStatus = "processed"
	WebhookDuplicate WebhookStatus = "duplicate"
	WebhookIgnored   WebhookStatus = "ignored"
)
