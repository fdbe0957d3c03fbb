package models

import (
	"time"

	"github.com/google/uuid"
)

// Kind selects the message template.
type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindStatusUpdate      Kind = "status_update"
	KindMerchantNotice    Kind = "merchant_notice"
)

func (k Kind) Valid() bool {
	switch k {
	case KindOrderConfirmation, KindStatusUpdate, KindMerchantNotice:
		return true
	}
	return false
}

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// LineSummary is one order line as shown in an email.
type LineSummary struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderSummary is everything a notification needs; it is self-contained so it
// can travel over SNS without a lookup on the receiving side.
type OrderSummary struct {
	OrderID       string        `json:"order_id"`
	TenantID      int64         `json:"tenant_id"`
	StoreName     string        `json:"store_name"`
	BuyerEmail    string        `json:"buyer_email"`
	MerchantEmail string        `json:"merchant_email,omitempty"`
	Status        string        `json:"status"`
	TotalCents    int64         `json:"total_cents"`
	Currency      string        `json:"currency"`
	Items         []LineSummary `json:"items"`
}

// Message is a fully rendered email.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

// EventPayload is the SNS/SQS wire format.
type EventPayload struct {
	EventType Kind         `json:"event_type"`
	Summary   OrderSummary `json:"summary"`
	RequestID string       `json:"request_id,omitempty"`
}

// NotificationLog records one delivery attempt.
type NotificationLog struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID          int64     `json:"tenant_id" gorm:"index;not null"`
	OrderID           string    `json:"order_id" gorm:"index;not null"`
	Kind              Kind      `json:"kind" gorm:"not null"`
	Detail            string    `json:"detail"`
	Recipient         string    `json:"recipient" gorm:"not null"`
	Subject           string    `json:"subject"`
	Status            string    `json:"status" gorm:"not null"`
	Error             string    `json:"error,omitempty"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type NotificationFilter struct {
	TenantID int64
	OrderID  string
	Status   string
	Page     int
	PageSize int
}
