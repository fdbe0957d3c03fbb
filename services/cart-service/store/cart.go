// Package store holds the cart for one buyer of one tenant. Every mutation
// writes the whole item list through Storage; totals are derived on read.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/yashrajoria/storefront/services/cart-service/models"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/money"
)

// Storage is a key-value store for serialized carts.
type Storage interface {
	// Load returns found=false when key does not exist.
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Key is the storage key of a cart.
func Key(tenantID int64, cartID string) string {
	return fmt.Sprintf("cart:%d:%s", tenantID, cartID)
}

type Cart struct {
	mu       sync.Mutex
	storage  Storage
	key      string
	cartID   string
	tenantID int64
	items    []models.Item
}

// Open rehydrates a cart from storage, or starts an empty one.
func Open(ctx context.Context, storage Storage, tenantID int64, cartID string) (*Cart, error) {
	c := &Cart{
		storage:  storage,
		key:      Key(tenantID, cartID),
		cartID:   cartID,
		tenantID: tenantID,
	}

	data, found, err := storage.Load(ctx, c.key)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "load cart %s", c.key)
	}
	if found {
		if err := json.Unmarshal(data, &c.items); err != nil {
			return nil, pkgerrors.Wrapf(err, "decode cart %s", c.key)
		}
	}
	return c, nil
}

// Add increments the quantity of an existing line, or appends item with quantity 1.
func (c *Cart) Add(ctx context.Context, item models.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item.TenantID != c.tenantID {
		return apperrors.TenantMismatch(c.tenantID, item.TenantID)
	}
	if item.UnitPrice.IsNegative() {
		return apperrors.Validation("item %d has negative price", item.ID)
	}
	if err := money.CheckLine(money.Line{UnitPrice: item.UnitPrice, Quantity: 1}); err != nil {
		return apperrors.Validation("item %d: %v", item.ID, err)
	}

	next := c.snapshot()
	found := false
	for i := range next {
		if next[i].ID == item.ID {
			if next[i].Quantity >= money.MaxQuantity {
				return apperrors.Validation("item %d already at the maximum quantity %d", item.ID, money.MaxQuantity)
			}
			next[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		if len(next) >= money.MaxLines {
			return apperrors.Validation("cart already has %d lines", money.MaxLines)
		}
		item.Quantity = 1
		next = append(next, item)
	}
	return c.persist(ctx, next)
}

func (c *Cart) Remove(ctx context.Context, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]models.Item, 0, len(c.items))
	for _, it := range c.items {
		if it.ID != productID {
			next = append(next, it)
		}
	}
	return c.persist(ctx, next)
}

// SetQuantity sets an absolute quantity; n <= 0 removes the line. Unknown
// products are a no-op.
func (c *Cart) SetQuantity(ctx context.Context, productID int64, n int) error {
	if n > money.MaxQuantity {
		return apperrors.Validation("quantity %d above the maximum %d", n, money.MaxQuantity)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]models.Item, 0, len(c.items))
	for _, it := range c.items {
		if it.ID == productID {
			if n <= 0 {
				continue
			}
			it.Quantity = n
		}
		next = append(next, it)
	}
	return c.persist(ctx, next)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.storage.Delete(ctx, c.key); err != nil {
		return pkgerrors.Wrapf(err, "clear cart %s", c.key)
	}
	c.items = nil
	return nil
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Total is sum(round(unit_price*100) * quantity) in cents. Carts loaded from
// storage are not re-validated, so a total that does not fit is a ValidationError.
func (c *Cart) Total() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]money.Line, len(c.items))
	for i, it := range c.items {
		lines[i] = money.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	total, err := money.Total(lines)
	if err != nil {
		return 0, apperrors.Validation("cart total: %v", err)
	}
	return total, nil
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) TenantID() int64 { return c.tenantID }

func (c *Cart) ID() string { return c.cartID }

// View renders the cart for API responses.
func (c *Cart) View() (models.CartView, error) {
	cents, err := c.Total()
	if err != nil {
		return models.CartView{}, err
	}
	return models.CartView{
		CartID:     c.cartID,
		TenantID:   c.tenantID,
		Items:      c.Items(),
		Total:      money.FromCents(cents),
		TotalCents: cents,
		TotalItems: c.TotalItems(),
	}, nil
}

func (c *Cart) snapshot() []models.Item {
	out := make([]models.Item, len(c.items))
	copy(out, c.items)
	return out
}

// persist writes next and only then makes it the cart's state, so a failed
// write leaves the in-memory cart matching storage.
func (c *Cart) persist(ctx context.Context, next []models.Item) error {
	data, err := json.Marshal(next)
	if err != nil {
		return pkgerrors.Wrap(err, "encode cart")
	}
	if err := c.storage.Save(ctx, c.key, data); err != nil {
		return pkgerrors.Wrapf(err, "save cart %s", c.key)
	}
	c.items = next
	return nil
}
