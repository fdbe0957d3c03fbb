package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"github.com/yashrajoria/storefront/services/common/tenants"
	notifmodels "github.com/yashrajoria/storefront/services/notification-service/models"
	ordermodels "github.com/yashrajoria/storefront/services/order-service/models"
	"github.com/yashrajoria/storefront/services/order-service/repository"
)

const testWebhookSecret = "whsec_test_secret"

// fakeStripe records calls and verifies signatures with the real Stripe helper.
type fakeStripe struct {
	*StripeService

	mu             sync.Mutex
	sessions       []*stripe.CheckoutSessionParams
	accountCalls   int
	accountKeys    []string
	linkAccounts   []string
	accountsByKey  map[string]string
	sessionErr     error
	accountErr     error
	linkErr        error
	sessionCounter int
}

func newFakeStripe() *fakeStripe {
	return &fakeStripe{
		StripeService: &StripeService{webhookSecret: testWebhookSecret},
		accountsByKey: map[string]string{},
	}
}

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions = append(f.sessions, params)
	f.sessionCounter++
	id := fmt.Sprintf("cs_test_%d", f.sessionCounter)
	return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (f *fakeStripe) CreateAccount(_ context.Context, params *stripe.AccountParams) (*stripe.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	key := ""
	if params.IdempotencyKey != nil {
		key = *params.IdempotencyKey
	}
	f.accountKeys = append(f.accountKeys, key)
	if id, ok := f.accountsByKey[key]; ok && key != "" {
		return &stripe.Account{ID: id}, nil
	}
	id := fmt.Sprintf("acct_%d", f.accountCalls)
	f.accountsByKey[key] = id
	return &stripe.Account{ID: id}, nil
}

func (f *fakeStripe) CreateAccountLink(_ context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	f.linkAccounts = append(f.linkAccounts, *params.Account)
	return &stripe.AccountLink{URL: "https://connect.stripe.test/setup/" + *params.Account}, nil
}

func (f *fakeStripe) accountCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accountCalls
}

// signPayload builds a Stripe-Signature header for payload.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[int64]*tenants.Profile
	setErr   error
}

func newMemProfiles(ps ...tenants.Profile) *memProfiles {
	m := &memProfiles{profiles: map[int64]*tenants.Profile{}}
	for i := range ps {
		p := ps[i]
		m.profiles[p.TenantID] = &p
	}
	return m
}

func (m *memProfiles) FindByTenantID(_ context.Context, tenantID int64) (*tenants.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[tenantID]
	if !ok {
		return nil, tenants.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) Ensure(ctx context.Context, tenantID int64) (*tenants.Profile, error) {
	m.mu.Lock()
	if _, ok := m.profiles[tenantID]; !ok {
		m.profiles[tenantID] = &tenants.Profile{TenantID: tenantID}
	}
	m.mu.Unlock()
	return m.FindByTenantID(ctx, tenantID)
}

func (m *memProfiles) SetExternalAccountOnce(_ context.Context, tenantID int64, accountID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return "", m.setErr
	}
	p := m.profiles[tenantID]
	if p.ExternalAccountID == nil {
		p.ExternalAccountID = &accountID
	}
	return *p.ExternalAccountID, nil
}

func strPtr(s string) *string { return &s }

// memOrders is an in-memory OrderRepository keyed by session id.
type memOrders struct {
	mu     sync.Mutex
	orders map[string]*ordermodels.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]*ordermodels.Order{}}
}

func (m *memOrders) CreateIfAbsent(_ context.Context, order *ordermodels.Order) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.orders[order.ExternalSessionID]; ok {
		*order = *existing
		return false, nil
	}
	stored := *order
	m.orders[order.ExternalSessionID] = &stored
	return true, nil
}

func (m *memOrders) FindBySessionID(_ context.Context, sessionID string) (*ordermodels.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[sessionID]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (m *memOrders) FindByID(context.Context, int64, uuid.UUID) (*ordermodels.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func (m *memOrders) ListByTenant(context.Context, int64, ordermodels.OrderStatus, int, int) ([]ordermodels.Order, int64, error) {
	return nil, 0, nil
}

func (m *memOrders) UpdateStatus(context.Context, int64, uuid.UUID, ordermodels.OrderStatus, ordermodels.OrderStatus) (bool, error) {
	return false, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []notifmodels.Kind
}

func (n *recordingNotifier) Notify(_ context.Context, kind notifmodels.Kind, _ notifmodels.OrderSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
}
