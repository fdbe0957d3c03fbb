package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/logger"
	"github.com/yashrajoria/storefront/services/common/money"
	"github.com/yashrajoria/storefront/services/common/tenants"
	ordermodels "github.com/yashrajoria/storefront/services/order-service/models"
	orderservices "github.com/yashrajoria/storefront/services/order-service/services"
	"github.com/yashrajoria/storefront/services/payment-service/models"
	"go.uber.org/zap"
)

// Stripe rejects metadata values longer than this.
const maxMetadataValue = 500

type CheckoutService interface {
	CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}

type checkoutService struct {
	stripe   StripeClient
	profiles tenants.Repository
	feeRate  decimal.Decimal
	currency string
	metrics  awspkg.Recorder
	log      *zap.Logger
}

func NewCheckoutService(client StripeClient, profiles tenants.Repository, feeRate decimal.Decimal, currency string, metrics awspkg.Recorder, log *zap.Logger) CheckoutService {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	return &checkoutService{
		stripe:   client,
		profiles: profiles,
		feeRate:  feeRate,
		currency: currency,
		metrics:  metrics,
		log:      log,
	}
}

// CreateSession validates the cart, splits the platform fee out of the total
// and opens a hosted checkout that routes the remainder to the tenant account.
// Nothing is written locally.
func (s *checkoutService) CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	log := logger.FromContext(ctx, s.log)

	if err := checkDomain(req.Domain); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperrors.Validation("cart is empty")
	}
	for _, it := range req.Items {
		if it.TenantID != req.TenantID {
			return nil, apperrors.TenantMismatch(req.TenantID, it.TenantID)
		}
	}

	lines := toLineItems(req.Items)
	if err := orderservices.ValidateItems(lines); err != nil {
		return nil, err
	}
	cartJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, apperrors.Internal("failed to encode cart", err)
	}
	if len(cartJSON) > maxMetadataValue {
		return nil, apperrors.Validation("cart has too many items for a single checkout")
	}

	profile, err := s.profiles.FindByTenantID(ctx, req.TenantID)
	if errors.Is(err, tenants.ErrProfileNotFound) {
		return nil, apperrors.TenantNotPayable(req.TenantID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load tenant payment profile", err)
	}
	if !profile.Payable() {
		return nil, apperrors.TenantNotPayable(req.TenantID)
	}

	total, err := orderservices.OrderTotal(lines)
	if err != nil {
		return nil, err
	}
	split := money.SplitFee(total, s.feeRate)

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL(req.Domain)),
		CancelURL:  stripe.String(cancelURL(req.Domain)),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(split.FeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(*profile.ExternalAccountID),
			},
		},
		Metadata: map[string]string{
			models.MetadataTenantID:  strconv.FormatInt(req.TenantID, 10),
			models.MetadataCartItems: string(cartJSON),
			models.MetadataCurrency:  s.currency,
		},
	}
	for _, li := range lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(money.ToCents(li.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			},
			Quantity: stripe.Int64(int64(li.Quantity)),
		})
	}

	sess, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		log.Error("Stripe checkout session creation failed",
			zap.Int64("tenant_id", req.TenantID),
			zap.Error(err),
		)
		return nil, apperrors.Processor("failed to create checkout session", err)
	}

	log.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.Int64("tenant_id", req.TenantID),
		zap.Int64("total_cents", split.TotalCents),
		zap.Int64("fee_cents", split.FeeCents),
	)
	_ = s.metrics.RecordCount(ctx, awspkg.MetricCheckoutSessions, map[string]string{
		"TenantID": strconv.FormatInt(req.TenantID, 10),
	})
	return &models.CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

func toLineItems(items []models.CartItem) []ordermodels.LineItem {
	lines := make([]ordermodels.LineItem, len(items))
	for i, it := range items {
		lines[i] = ordermodels.LineItem{
			ProductID: it.ID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}
	return lines
}
