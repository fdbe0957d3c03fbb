package services

import (
	"context"

	"github.com/yashrajoria/storefront/services/cart-service/models"
	"github.com/yashrajoria/storefront/services/cart-service/store"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/logger"
	paymentmodels "github.com/yashrajoria/storefront/services/payment-service/models"
	"go.uber.org/zap"
)

// CheckoutClient opens hosted checkout sessions.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, req paymentmodels.CheckoutRequest) (*paymentmodels.CheckoutResponse, error)
}

type CartService struct {
	storage  store.Storage
	checkout CheckoutClient
	log      *zap.Logger
}

func NewCartService(storage store.Storage, checkout CheckoutClient, log *zap.Logger) *CartService {
	return &CartService{storage: storage, checkout: checkout, log: log}
}

func (s *CartService) open(ctx context.Context, tenantID int64, cartID string) (*store.Cart, error) {
	cart, err := store.Open(ctx, s.storage, tenantID, cartID)
	if err != nil {
		return nil, apperrors.Internal("failed to load cart", err)
	}
	return cart, nil
}

// mutate opens the cart, applies fn and returns the resulting view.
func (s *CartService) mutate(ctx context.Context, tenantID int64, cartID string, fn func(*store.Cart) error) (*models.CartView, error) {
	cart, err := s.open(ctx, tenantID, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			logger.FromContext(ctx, s.log).Error("Cart update failed", zap.String("cart_id", cartID), zap.Error(err))
			return nil, apperrors.Internal("failed to save cart", err)
		}
		return nil, err
	}
	view, err := cart.View()
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *CartService) Get(ctx context.Context, tenantID int64, cartID string) (*models.CartView, error) {
	cart, err := s.open(ctx, tenantID, cartID)
	if err != nil {
		return nil, err
	}
	view, err := cart.View()
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *CartService) AddItem(ctx context.Context, tenantID int64, cartID string, req models.AddItemRequest) (*models.CartView, error) {
	item := models.Item{ID: req.ID, Name: req.Name, UnitPrice: req.UnitPrice, TenantID: req.TenantID}
	if item.TenantID == 0 {
		item.TenantID = tenantID
	}
	return s.mutate(ctx, tenantID, cartID, func(c *store.Cart) error { return c.Add(ctx, item) })
}

func (s *CartService) SetQuantity(ctx context.Context, tenantID int64, cartID string, productID int64, n int) (*models.CartView, error) {
	return s.mutate(ctx, tenantID, cartID, func(c *store.Cart) error { return c.SetQuantity(ctx, productID, n) })
}

func (s *CartService) RemoveItem(ctx context.Context, tenantID int64, cartID string, productID int64) (*models.CartView, error) {
	return s.mutate(ctx, tenantID, cartID, func(c *store.Cart) error { return c.Remove(ctx, productID) })
}

func (s *CartService) Clear(ctx context.Context, tenantID int64, cartID string) (*models.CartView, error) {
	return s.mutate(ctx, tenantID, cartID, func(c *store.Cart) error { return c.Clear(ctx) })
}

// Checkout hands the cart to payment-service and empties it once a session
// exists. A failed clear is logged only; the buyer is already on their way
// to the hosted page.
func (s *CartService) Checkout(ctx context.Context, tenantID int64, cartID, domain string) (*paymentmodels.CheckoutResponse, error) {
	log := logger.FromContext(ctx, s.log).With(zap.Int64("tenant_id", tenantID), zap.String("cart_id", cartID))

	cart, err := s.open(ctx, tenantID, cartID)
	if err != nil {
		return nil, err
	}
	items := cart.Items()
	if len(items) == 0 {
		return nil, apperrors.Validation("cart is empty")
	}

	total, err := cart.Total()
	if err != nil {
		return nil, err
	}

	req := paymentmodels.CheckoutRequest{TenantID: tenantID, Domain: domain}
	for _, it := range items {
		req.Items = append(req.Items, paymentmodels.CartItem{
			ID:        it.ID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			TenantID:  it.TenantID,
		})
	}

	resp, err := s.checkout.CreateCheckoutSession(ctx, req)
	if err != nil {
		log.Warn("Checkout session request failed", zap.Error(err))
		return nil, err
	}

	if err := cart.Clear(ctx); err != nil {
		log.Error("Failed to clear cart after checkout", zap.String("session_id", resp.SessionID), zap.Error(err))
	}
	log.Info("Cart checked out", zap.String("session_id", resp.SessionID), zap.Int64("total_cents", total))
	return resp, nil
}
