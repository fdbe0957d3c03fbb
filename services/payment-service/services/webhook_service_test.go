package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	notifmodels "github.com/yashrajoria/storefront/services/notification-service/models"
	ordermodels "github.com/yashrajoria/storefront/services/order-service/models"
	orderservices "github.com/yashrajoria/storefront/services/order-service/services"
	"github.com/yashrajoria/storefront/services/payment-service/models"
	"go.uber.org/zap"
)

type pipeline struct {
	stripe   *fakeStripe
	orders   *memOrders
	notifier *recordingNotifier
	checkout CheckoutService
	webhook  WebhookService
}

func newPipeline() *pipeline {
	fs := newFakeStripe()
	profiles := payableProfiles()
	orders := newMemOrders()
	notifier := &recordingNotifier{}
	orderSvc := orderservices.NewOrderService(orders, profiles, notifier, nil, zap.NewNop())
	return &pipeline{
		stripe:   fs,
		orders:   orders,
		notifier: notifier,
		checkout: NewCheckoutService(fs, profiles, feeRate, "brl", nil, zap.NewNop()),
		webhook:  NewWebhookService(fs, orderSvc, nil, zap.NewNop()),
	}
}

func completedEvent(t *testing.T, sessionID string, metadata map[string]string, email string) []byte {
	t.Helper()
	sess := map[string]interface{}{
		"id":       sessionID,
		"object":   "checkout.session",
		"currency": "brl",
		"metadata": metadata,
	}
	if email != "" {
		sess["customer_details"] = map[string]interface{}{"email": email}
	}
	return eventJSON(t, "checkout.session.completed", sess)
}

func eventJSON(t *testing.T, eventType string, object map[string]interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":          "evt_1",
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"data":        map[string]interface{}{"object": object},
	})
	require.NoError(t, err)
	return body
}

func TestCheckoutToOrder_EndToEnd(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	resp, err := p.checkout.CreateSession(ctx, shirtCart(7))
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)

	payload := completedEvent(t, resp.SessionID, p.stripe.sessions[0].Metadata, "buyer@example.com")
	status, err := p.webhook.HandleEvent(ctx, payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, models.WebhookProcessed, status)

	order, err := p.orders.FindBySessionID(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), order.TenantID)
	assert.Equal(t, ordermodels.StatusPaid, order.Status)
	assert.Equal(t, int64(5980), order.TotalCents)
	assert.Equal(t, "59.8", order.Total.String())
	assert.Equal(t, "buyer@example.com", order.BuyerEmail)
	assert.Equal(t, "brl", order.Currency)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, int64(1), order.LineItems[0].ProductID)
	assert.Equal(t, "Shirt", order.LineItems[0].Name)
	assert.Equal(t, "29.9", order.LineItems[0].UnitPrice.String())
	assert.Equal(t, 2, order.LineItems[0].Quantity)

	// Redelivery of the identical event.
	status, err = p.webhook.HandleEvent(ctx, payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, models.WebhookDuplicate, status)
	assert.Len(t, p.orders.orders, 1)
	assert.Equal(t, []notifmodels.Kind{notifmodels.KindOrderConfirmation}, p.notifier.kinds)
}

func TestHandleEvent_RejectsBadSignatures(t *testing.T) {
	p := newPipeline()
	payload := completedEvent(t, "cs_forged", map[string]string{
		"tenant_id":  "7",
		"cart_items": `[{"id":1,"name":"Shirt","unit_price":"29.90","quantity":2}]`,
	}, "buyer@example.com")

	headers := map[string]string{
		"missing":      "",
		"wrong secret": signPayload(payload, "whsec_other", time.Now()),
		"stale":        signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)),
		"garbage":      "t=abc,v1=deadbeef",
	}
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			_, err := p.webhook.HandleEvent(context.Background(), payload, header)
			assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
			assert.Equal(t, 400, apperrors.StatusOf(err))
		})
	}

	tampered := append([]byte{}, payload...)
	sig := signPayload(payload, testWebhookSecret, time.Now())
	tampered[len(tampered)-2] = ' '
	_, err := p.webhook.HandleEvent(context.Background(), tampered, sig)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	assert.Empty(t, p.orders.orders)
}

func TestHandleEvent_IgnoresOtherTypes(t *testing.T) {
	p := newPipeline()
	payload := eventJSON(t, "payment_intent.succeeded", map[string]interface{}{"id": "pi_1", "object": "payment_intent"})

	status, err := p.webhook.HandleEvent(context.Background(), payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, models.WebhookIgnored, status)
	assert.Empty(t, p.orders.orders)
}

func TestHandleEvent_MalformedEvents(t *testing.T) {
	validItems := `[{"id":1,"name":"Shirt","unit_price":"29.90","quantity":2}]`
	cases := map[string]struct {
		metadata map[string]string
		email    string
	}{
		"missing tenant":    {map[string]string{"cart_items": validItems}, "b@example.com"},
		"bad tenant":        {map[string]string{"tenant_id": "seven", "cart_items": validItems}, "b@example.com"},
		"missing items":     {map[string]string{"tenant_id": "7"}, "b@example.com"},
		"undecodable items": {map[string]string{"tenant_id": "7", "cart_items": "[{"}, "b@example.com"},
		"invalid items":     {map[string]string{"tenant_id": "7", "cart_items": `[{"id":1,"name":"Shirt","unit_price":"1","quantity":0}]`}, "b@example.com"},
		"empty items":       {map[string]string{"tenant_id": "7", "cart_items": `[]`}, "b@example.com"},
		"missing email":     {map[string]string{"tenant_id": "7", "cart_items": validItems}, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := newPipeline()
			payload := completedEvent(t, "cs_bad", tc.metadata, tc.email)
			_, err := p.webhook.HandleEvent(context.Background(), payload, signPayload(payload, testWebhookSecret, time.Now()))
			assert.ErrorIs(t, err, apperrors.ErrMalformedEvent)
			assert.Equal(t, 422, apperrors.StatusOf(err))
			assert.Empty(t, p.orders.orders)
		})
	}
}

func TestHandleEvent_FallsBackToCustomerEmail(t *testing.T) {
	p := newPipeline()
	payload := eventJSON(t, "checkout.session.completed", map[string]interface{}{
		"id":             "cs_email",
		"object":         "checkout.session",
		"customer_email": "legacy@example.com",
		"metadata": map[string]string{
			"tenant_id":  "7",
			"cart_items": `[{"id":1,"name":"Shirt","unit_price":"29.90","quantity":2}]`,
		},
	})

	status, err := p.webhook.HandleEvent(context.Background(), payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, models.WebhookProcessed, status)

	order, err := p.orders.FindBySessionID(context.Background(), "cs_email")
	require.NoError(t, err)
	assert.Equal(t, "legacy@example.com", order.BuyerEmail)
	assert.Equal(t, "brl", order.Currency)
}

func TestHandleEvent_RecomputesTotalFromItems(t *testing.T) {
	p := newPipeline()
	payload := completedEvent(t, "cs_total", map[string]string{
		"tenant_id":   "7",
		"cart_items":  `[{"id":1,"name":"Shirt","unit_price":"29.90","quantity":2}]`,
		"total_cents": "1",
	}, "buyer@example.com")

	_, err := p.webhook.HandleEvent(context.Background(), payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	order, err := p.orders.FindBySessionID(context.Background(), "cs_total")
	require.NoError(t, err)
	assert.Equal(t, int64(5980), order.TotalCents)
}
