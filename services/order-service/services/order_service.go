package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/logger"
	"github.com/yashrajoria/storefront/services/common/money"
	"github.com/yashrajoria/storefront/services/common/tenants"
	notifmodels "github.com/yashrajoria/storefront/services/notification-service/models"
	"github.com/yashrajoria/storefront/services/order-service/models"
	"github.com/yashrajoria/storefront/services/order-service/repository"
	"go.uber.org/zap"
)

// Notifier is the fire-and-forget side of the notification dispatcher.
type Notifier interface {
	Notify(ctx context.Context, kind notifmodels.Kind, summary notifmodels.OrderSummary)
}

type MaterializeInput struct {
	SessionID  string
	TenantID   int64
	Items      []models.LineItem
	BuyerEmail string
	Currency   string
}

type OrderService interface {
	// Materialize creates the order for a paid checkout session. created is
	// false when the session was already materialized; the stored order is
	// returned and nothing is notified.
	Materialize(ctx context.Context, in MaterializeInput) (*models.Order, bool, error)
	GetOrder(ctx context.Context, tenantID int64, id string) (*models.Order, error)
	ListOrders(ctx context.Context, tenantID int64, status string, page, pageSize int) (*models.OrderPage, error)
	UpdateStatus(ctx context.Context, tenantID int64, id string, status string) (*models.Order, error)
}

type orderService struct {
	repo     repository.OrderRepository
	profiles tenants.Repository
	notifier Notifier
	metrics  awspkg.Recorder
	log      *zap.Logger
}

func NewOrderService(repo repository.OrderRepository, profiles tenants.Repository, notifier Notifier, metrics awspkg.Recorder, log *zap.Logger) OrderService {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	return &orderService{repo: repo, profiles: profiles, notifier: notifier, metrics: metrics, log: log}
}

// ValidateItems applies the checkout rules to a set of line items.
func ValidateItems(items []models.LineItem) error {
	if len(items) == 0 {
		return apperrors.Validation("cart is empty")
	}
	if len(items) > money.MaxLines {
		return apperrors.Validation("cart has %d lines, at most %d allowed", len(items), money.MaxLines)
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return apperrors.Validation("item %d has no name", it.ProductID)
		}
		if it.Quantity <= 0 {
			return apperrors.Validation("item %q has non-positive quantity %d", it.Name, it.Quantity)
		}
		if it.UnitPrice.IsNegative() {
			return apperrors.Validation("item %q has negative price", it.Name)
		}
		if err := money.CheckLine(money.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity}); err != nil {
			return apperrors.Validation("item %q: %v", it.Name, err)
		}
	}
	return nil
}

// OrderTotal is the total of validated items in cents.
func OrderTotal(items []models.LineItem) (int64, error) {
	order := models.Order{LineItems: items}
	total, err := money.Total(order.Lines())
	if err != nil {
		return 0, apperrors.Validation("order total: %v", err)
	}
	return total, nil
}

func (s *orderService) Materialize(ctx context.Context, in MaterializeInput) (*models.Order, bool, error) {
	log := logger.FromContext(ctx, s.log)

	if in.SessionID == "" {
		return nil, false, apperrors.MalformedEvent("missing session id")
	}
	if in.BuyerEmail == "" {
		return nil, false, apperrors.MalformedEvent("missing buyer email")
	}
	if err := ValidateItems(in.Items); err != nil {
		return nil, false, err
	}
	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = "brl"
	}

	order := &models.Order{
		ID:                uuid.New(),
		TenantID:          in.TenantID,
		ExternalSessionID: in.SessionID,
		Status:            models.StatusPaid,
		Currency:          currency,
		BuyerEmail:        in.BuyerEmail,
		LineItems:         in.Items,
	}
	total, err := OrderTotal(in.Items)
	if err != nil {
		return nil, false, err
	}
	order.TotalCents = total
	order.Total = money.FromCents(order.TotalCents)

	created, err := s.repo.CreateIfAbsent(ctx, order)
	if err != nil {
		log.Error("Failed to persist order", zap.String("session_id", in.SessionID), zap.Error(err))
		return nil, false, apperrors.Internal("failed to persist order", err)
	}
	dims := map[string]string{"TenantID": strconv.FormatInt(in.TenantID, 10)}
	if !created {
		log.Info("Checkout session already materialized",
			zap.String("session_id", in.SessionID),
			zap.String("order_id", order.ID.String()),
		)
		_ = s.metrics.RecordCount(ctx, awspkg.MetricDuplicateDeliveries, dims)
		return order, false, nil
	}

	log.Info("Order materialized",
		zap.String("order_id", order.ID.String()),
		zap.Int64("tenant_id", order.TenantID),
		zap.Int64("total_cents", order.TotalCents),
	)
	_ = s.metrics.RecordCount(ctx, awspkg.MetricOrdersMaterialized, dims)

	summary, profile := s.summarize(ctx, order)
	s.notifier.Notify(ctx, notifmodels.KindOrderConfirmation, summary)
	if profile != nil && profile.OwnerEmail != "" {
		s.notifier.Notify(ctx, notifmodels.KindMerchantNotice, summary)
	}
	return order, true, nil
}

func (s *orderService) GetOrder(ctx context.Context, tenantID int64, id string) (*models.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Validation("invalid order id %q", id)
	}
	order, err := s.repo.FindByID(ctx, tenantID, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, apperrors.NotFound("order not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load order", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, tenantID int64, status string, page, pageSize int) (*models.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	st := models.OrderStatus(status)
	if st != "" && !st.Valid() {
		return nil, apperrors.Validation("unknown order status %q", status)
	}

	orders, total, err := s.repo.ListByTenant(ctx, tenantID, st, page, pageSize)
	if err != nil {
		return nil, apperrors.Internal("failed to list orders", err)
	}
	return &models.OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, tenantID int64, id string, status string) (*models.Order, error) {
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, apperrors.Validation("unknown order status %q", status)
	}

	order, err := s.GetOrder(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, apperrors.InvalidTransition(string(order.Status), string(next))
	}

	ok, err := s.repo.UpdateStatus(ctx, tenantID, order.ID, order.Status, next)
	if err != nil {
		return nil, apperrors.Internal("failed to update order status", err)
	}
	if !ok {
		// Another request moved the order first.
		current, err := s.GetOrder(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.InvalidTransition(string(current.Status), string(next))
	}

	logger.FromContext(ctx, s.log).Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)),
	)
	order.Status = next

	summary, _ := s.summarize(ctx, order)
	s.notifier.Notify(ctx, notifmodels.KindStatusUpdate, summary)
	return order, nil
}

// summarize builds the notification payload. A missing tenant profile only
// costs the store name, so lookup failures are logged and ignored.
func (s *orderService) summarize(ctx context.Context, order *models.Order) (notifmodels.OrderSummary, *tenants.Profile) {
	summary := notifmodels.OrderSummary{
		OrderID:    order.ID.String(),
		TenantID:   order.TenantID,
		BuyerEmail: order.BuyerEmail,
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		Items:      make([]notifmodels.LineSummary, len(order.LineItems)),
	}
	for i, li := range order.LineItems {
		summary.Items[i] = notifmodels.LineSummary{
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice.StringFixed(2),
		}
	}

	profile, err := s.profiles.FindByTenantID(ctx, order.TenantID)
	if err != nil {
		logger.FromContext(ctx, s.log).Warn("Tenant profile unavailable for notification",
			zap.Int64("tenant_id", order.TenantID), zap.Error(err))
		return summary, nil
	}
	summary.StoreName = profile.StoreName
	summary.MerchantEmail = profile.OwnerEmail
	return summary, profile
}
