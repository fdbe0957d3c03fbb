package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v80"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/logger"
	ordermodels "github.com/yashrajoria/storefront/services/order-service/models"
	orderservices "github.com/yashrajoria/storefront/services/order-service/services"
	"github.com/yashrajoria/storefront/services/payment-service/models"
	"go.uber.org/zap"
)

// OrderMaterializer is the part of the order service the webhook needs.
type OrderMaterializer interface {
	Materialize(ctx context.Context, in orderservices.MaterializeInput) (*ordermodels.Order, bool, error)
}

type WebhookService interface {
	// HandleEvent verifies and processes one delivery. A nil error means the
	// delivery is acknowledged; duplicates and ignored types are not errors.
	HandleEvent(ctx context.Context, payload []byte, sigHeader string) (models.WebhookStatus, error)
}

type webhookService struct {
	stripe  StripeClient
	orders  OrderMaterializer
	metrics awspkg.Recorder
	log     *zap.Logger
}

func NewWebhookService(client StripeClient, orders OrderMaterializer, metrics awspkg.Recorder, log *zap.Logger) WebhookService {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	return &webhookService{stripe: client, orders: orders, metrics: metrics, log: log}
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, sigHeader string) (models.WebhookStatus, error) {
	log := logger.FromContext(ctx, s.log)

	if err := s.stripe.VerifySignature(payload, sigHeader); err != nil {
		log.Warn("Webhook signature verification failed",
			zap.Bool("security_event", true),
			zap.Int("payload_bytes", len(payload)),
			zap.Error(err),
		)
		_ = s.metrics.RecordCount(ctx, awspkg.MetricInvalidSignatures, nil)
		return "", apperrors.InvalidSignature(err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", s.malformed(ctx, log, "undecodable event: %v", err)
	}
	log = log.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		log.Info("Ignoring webhook event type")
		return models.WebhookIgnored, nil
	}
	if event.Data == nil {
		return "", s.malformed(ctx, log, "event has no data")
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return "", s.malformed(ctx, log, "undecodable checkout session: %v", err)
	}
	in, err := materializeInput(&sess)
	if err != nil {
		return "", s.malformed(ctx, log.With(zap.String("session_id", sess.ID)), "%v", err)
	}

	order, created, err := s.orders.Materialize(ctx, in)
	if err != nil {
		if k := apperrors.KindOf(err); k == apperrors.KindValidation || k == apperrors.KindMalformedEvent {
			return "", s.malformed(ctx, log.With(zap.String("session_id", sess.ID)), "%v", err)
		}
		log.Error("Failed to materialize order", zap.String("session_id", sess.ID), zap.Error(err))
		return "", err
	}
	if !created {
		log.Info("Duplicate webhook delivery", zap.String("order_id", order.ID.String()))
		return models.WebhookDuplicate, nil
	}
	return models.WebhookProcessed, nil
}

func (s *webhookService) malformed(ctx context.Context, log *zap.Logger, format string, args ...interface{}) error {
	err := apperrors.MalformedEvent(format, args...)
	log.Error("Malformed payment event", zap.Bool("alert", true), zap.Error(err))
	_ = s.metrics.RecordCount(ctx, awspkg.MetricMalformedEvents, nil)
	return err
}

// materializeInput reads the cart back out of the session metadata. The
// metadata is echoed by the processor and treated as untrusted input.
func materializeInput(sess *stripe.CheckoutSession) (orderservices.MaterializeInput, error) {
	in := orderservices.MaterializeInput{SessionID: sess.ID}
	if sess.ID == "" {
		return in, apperrors.MalformedEvent("checkout session has no id")
	}

	rawTenant := sess.Metadata[models.MetadataTenantID]
	if rawTenant == "" {
		return in, apperrors.MalformedEvent("metadata tenant_id is missing")
	}
	tenantID, err := strconv.ParseInt(rawTenant, 10, 64)
	if err != nil || tenantID <= 0 {
		return in, apperrors.MalformedEvent("metadata tenant_id %q is invalid", rawTenant)
	}
	in.TenantID = tenantID

	rawItems := sess.Metadata[models.MetadataCartItems]
	if rawItems == "" {
		return in, apperrors.MalformedEvent("metadata cart_items is missing")
	}
	if err := json.Unmarshal([]byte(rawItems), &in.Items); err != nil {
		return in, apperrors.MalformedEvent("metadata cart_items is invalid: %v", err)
	}

	if sess.CustomerDetails != nil {
		in.BuyerEmail = sess.CustomerDetails.Email
	}
	if in.BuyerEmail == "" {
		in.BuyerEmail = sess.CustomerEmail
	}
	if in.BuyerEmail == "" {
		return in, apperrors.MalformedEvent("buyer email is missing")
	}

	in.Currency = sess.Metadata[models.MetadataCurrency]
	if in.Currency == "" {
		in.Currency = strings.ToLower(string(sess.Currency))
	}
	return in, nil
}
