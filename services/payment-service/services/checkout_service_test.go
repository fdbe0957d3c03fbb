package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/tenants"
	"github.com/yashrajoria/storefront/services/payment-service/models"
	"go.uber.org/zap"
)

var feeRate = decimal.RequireFromString("0.03")

func payableProfiles() *memProfiles {
	return newMemProfiles(
		tenants.Profile{TenantID: 7, StoreName: "Loja Sol", ExternalAccountID: strPtr("acct_7")},
		tenants.Profile{TenantID: 9, StoreName: "Sem Conta"},
	)
}

func shirtCart(tenantID int64) models.CheckoutRequest {
	return models.CheckoutRequest{
		TenantID: tenantID,
		Domain:   "loja.example.com",
		Items: []models.CartItem{
			{ID: 1, Name: "Shirt", UnitPrice: decimal.RequireFromString("29.90"), Quantity: 2, TenantID: tenantID},
		},
	}
}

func TestCreateSession_BuildsDestinationCharge(t *testing.T) {
	fs := newFakeStripe()
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	resp, err := svc.CreateSession(context.Background(), shirtCart(7))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", resp.SessionID)
	require.Len(t, fs.sessions, 1)

	p := fs.sessions[0]
	assert.Equal(t, "payment", *p.Mode)
	assert.Equal(t, "http://loja.example.com/success?session_id={CHECKOUT_SESSION_ID}", *p.SuccessURL)
	assert.Equal(t, "http://loja.example.com/cart", *p.CancelURL)
	assert.Equal(t, int64(179), *p.PaymentIntentData.ApplicationFeeAmount) // round(5980 * 0.03)
	assert.Equal(t, "acct_7", *p.PaymentIntentData.TransferData.Destination)

	require.Len(t, p.LineItems, 1)
	assert.Equal(t, int64(2990), *p.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, int64(2), *p.LineItems[0].Quantity)
	assert.Equal(t, "brl", *p.LineItems[0].PriceData.Currency)
	assert.Equal(t, "Shirt", *p.LineItems[0].PriceData.ProductData.Name)

	assert.Equal(t, "7", p.Metadata[models.MetadataTenantID])
	assert.Equal(t, "brl", p.Metadata[models.MetadataCurrency])
	var echoed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(p.Metadata[models.MetadataCartItems]), &echoed))
	require.Len(t, echoed, 1)
	assert.Equal(t, float64(1), echoed[0]["id"])
	assert.Equal(t, "Shirt", echoed[0]["name"])
	assert.Equal(t, "29.9", echoed[0]["unit_price"])
	assert.Equal(t, float64(2), echoed[0]["quantity"])
}

func TestCreateSession_FeeOnTenThousandCents(t *testing.T) {
	fs := newFakeStripe()
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	req := shirtCart(7)
	req.Items = []models.CartItem{
		{ID: 1, Name: "Lamp", UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2, TenantID: 7},
		{ID: 2, Name: "Rug", UnitPrice: decimal.RequireFromString("50.00"), Quantity: 1, TenantID: 7},
	}
	_, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(300), *fs.sessions[0].PaymentIntentData.ApplicationFeeAmount)
}

func TestCreateSession_MixedTenantsRejected(t *testing.T) {
	fs := newFakeStripe()
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	req := shirtCart(7)
	req.Items = append(req.Items, models.CartItem{
		ID: 2, Name: "Mug", UnitPrice: decimal.RequireFromString("10"), Quantity: 1, TenantID: 8,
	})
	_, err := svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrTenantMismatch)
	assert.Empty(t, fs.sessions)

	// The claimed tenant must match even if every item agrees with each other.
	req = shirtCart(8)
	req.TenantID = 7
	_, err = svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrTenantMismatch)
}

func TestCreateSession_ValidationErrors(t *testing.T) {
	fs := newFakeStripe()
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	cases := map[string]func(r *models.CheckoutRequest){
		"empty cart":       func(r *models.CheckoutRequest) { r.Items = nil },
		"zero quantity":    func(r *models.CheckoutRequest) { r.Items[0].Quantity = 0 },
		"negative price":   func(r *models.CheckoutRequest) { r.Items[0].UnitPrice = decimal.NewFromInt(-1) },
		"blank name":       func(r *models.CheckoutRequest) { r.Items[0].Name = "  " },
		"missing domain":   func(r *models.CheckoutRequest) { r.Domain = "" },
		"domain with path": func(r *models.CheckoutRequest) { r.Domain = "evil.example/phish" },
		"oversized cart":   func(r *models.CheckoutRequest) { r.Items = bigCart(60) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := shirtCart(7)
			mutate(&req)
			_, err := svc.CreateSession(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	assert.Empty(t, fs.sessions)
}

func TestCreateSession_RejectsAmountsBeyondProcessorLimits(t *testing.T) {
	fs := newFakeStripe()
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	cases := map[string]func(r *models.CheckoutRequest){
		"wrapping quantity": func(r *models.CheckoutRequest) {
			r.Items[0].UnitPrice = decimal.RequireFromString("1.00")
			r.Items[0].Quantity = math.MaxInt64 / 50
		},
		"quantity over limit": func(r *models.CheckoutRequest) { r.Items[0].Quantity = 1_000_000 },
		"price over limit": func(r *models.CheckoutRequest) {
			r.Items[0].UnitPrice = decimal.RequireFromString("1000000.00")
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := shirtCart(7)
			mutate(&req)
			_, err := svc.CreateSession(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	assert.Empty(t, fs.sessions)
}

func TestCreateSession_LargestAllowedLineKeepsFeeSplit(t *testing.T) {
	fs := newFakeStripe()
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	req := shirtCart(7)
	req.Items[0].UnitPrice = decimal.RequireFromString("999999.99")
	req.Items[0].Quantity = 999_999
	_, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, fs.sessions, 1)
	total := int64(99_999_999) * 999_999
	fee := *fs.sessions[0].PaymentIntentData.ApplicationFeeAmount
	assert.Equal(t, decimal.NewFromInt(total).Mul(feeRate).Round(0).IntPart(), fee)
	assert.Positive(t, fee)
}

func bigCart(n int) []models.CartItem {
	items := make([]models.CartItem, n)
	for i := range items {
		items[i] = models.CartItem{
			ID: int64(i + 1), Name: fmt.Sprintf("Item %d", i), UnitPrice: decimal.NewFromInt(1), Quantity: 1, TenantID: 7,
		}
	}
	return items
}

func TestCreateSession_TenantNotPayable(t *testing.T) {
	fs := newFakeStripe()
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	_, err := svc.CreateSession(context.Background(), shirtCart(9))
	assert.ErrorIs(t, err, apperrors.ErrTenantNotPayable)

	_, err = svc.CreateSession(context.Background(), shirtCart(404))
	assert.ErrorIs(t, err, apperrors.ErrTenantNotPayable)
	assert.Empty(t, fs.sessions)
}

func TestCreateSession_ProcessorError(t *testing.T) {
	fs := newFakeStripe()
	fs.sessionErr = errors.New("stripe unavailable")
	svc := NewCheckoutService(fs, payableProfiles(), feeRate, "brl", nil, zap.NewNop())

	_, err := svc.CreateSession(context.Background(), shirtCart(7))
	assert.ErrorIs(t, err, apperrors.ErrProcessor)
	assert.True(t, strings.Contains(err.Error(), "stripe unavailable"))
}
