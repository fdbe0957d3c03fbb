package models

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line. Quantity is managed by the cart, not the client.
type Item struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TenantID  int64           `json:"tenant_id"`
	Quantity  int             `json:"quantity"`
}

type CartView struct {
	CartID     string          `json:"cart_id"`
	TenantID   int64           `json:"tenant_id"`
	Items      []Item          `json:"items"`
	Total      decimal.Decimal `json:"total"`
	TotalCents int64           `json:"total_cents"`
	TotalItems int             `json:"total_items"`
}

type AddItemRequest struct {
	ID        int64           `json:"id" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// TenantID defaults to the X-Tenant-ID header when omitted.
	TenantID int64 `json:"tenant_id"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	Domain string `json:"domain" binding:"required"`
}
