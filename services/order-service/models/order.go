package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront/services/common/money"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCanceled  OrderStatus = "canceled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPaid:    {StatusShipped, StatusCanceled},
	StatusShipped: {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LineItem is stored verbatim from the checkout metadata.
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is created once per external checkout session.
type Order struct {
	ID                uuid.UUID                     `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID          int64                         `json:"tenant_id" gorm:"not null;index"`
	ExternalSessionID string                        `json:"external_session_id" gorm:"not null;uniqueIndex"`
	Status            OrderStatus                   `json:"status" gorm:"type:varchar(20);not null;index"`
	TotalCents        int64                         `json:"total_cents" gorm:"not null"`
	Total             decimal.Decimal               `json:"total" gorm:"-"`
	Currency          string                        `json:"currency" gorm:"type:varchar(3);not null"`
	BuyerEmail        string                        `json:"buyer_email" gorm:"not null"`
	LineItems         datatypes.JSONSlice[LineItem] `json:"line_items" gorm:"type:jsonb;not null"`
	CreatedAt         time.Time                     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time                     `json:"updated_at" gorm:"autoUpdateTime"`
}

// AfterFind fills the decimal total for API responses.
func (o *Order) AfterFind(*gorm.DB) error {
	o.Total = money.FromCents(o.TotalCents)
	return nil
}

// Lines adapts line items to the money helpers.
func (o *Order) Lines() []money.Line {
	lines := make([]money.Line, len(o.LineItems))
	for i, li := range o.LineItems {
		lines[i] = money.Line{UnitPrice: li.UnitPrice, Quantity: li.Quantity}
	}
	return lines
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderPage is one page of a tenant's orders.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
