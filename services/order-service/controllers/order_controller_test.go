package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront/services/common/auth"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/order-service/controllers"
	"github.com/yashrajoria/storefront/services/order-service/models"
	"github.com/yashrajoria/storefront/services/order-service/routes"
	"github.com/yashrajoria/storefront/services/order-service/services"
)

type mockOrderService struct {
	services.OrderService
	tenantID int64
	status   string
	err      error
}

func (m *mockOrderService) GetOrder(_ context.Context, tenantID int64, id string) (*models.Order, error) {
	m.tenantID = tenantID
	if m.err != nil {
		return nil, m.err
	}
	return &models.Order{ID: uuid.MustParse(id), TenantID: tenantID, Status: models.StatusPaid}, nil
}

func (m *mockOrderService) ListOrders(_ context.Context, tenantID int64, status string, page, pageSize int) (*models.OrderPage, error) {
	m.tenantID, m.status = tenantID, status
	return &models.OrderPage{Orders: []models.Order{}, Page: page, PageSize: pageSize}, nil
}

func (m *mockOrderService) UpdateStatus(_ context.Context, tenantID int64, id string, status string) (*models.Order, error) {
	m.tenantID, m.status = tenantID, status
	if m.err != nil {
		return nil, m.err
	}
	return &models.Order{ID: uuid.MustParse(id), TenantID: tenantID, Status: models.OrderStatus(status)}, nil
}

func setupRouter(t *testing.T, svc services.OrderService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	parser, err := auth.NewTokenParser("test-secret-test-secret-test-secret")
	require.NoError(t, err)
	token, err := parser.IssueTenantToken(42, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	routes.RegisterOrderRoutes(r, controllers.NewOrderController(svc), parser)
	return r, token
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOrders_RequireToken(t *testing.T) {
	r, _ := setupRouter(t, &mockOrderService{})
	w := do(r, http.MethodGet, "/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetOrders_ScopedToTokenTenant(t *testing.T) {
	svc := &mockOrderService{}
	r, token := setupRouter(t, svc)

	w := do(r, http.MethodGet, "/orders?status=paid&page=3", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), svc.tenantID)
	assert.Equal(t, "paid", svc.status)
	assert.Contains(t, w.Body.String(), `"page":3`)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	svc := &mockOrderService{err: apperrors.NotFound("order not found")}
	r, token := setupRouter(t, svc)

	w := do(r, http.MethodGet, "/orders/"+uuid.NewString(), token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"not_found"`)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := &mockOrderService{}
	r, token := setupRouter(t, svc)
	id := uuid.NewString()

	w := do(r, http.MethodPatch, "/orders/"+id+"/status", token, `{"status":"shipped"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shipped", svc.status)
	assert.Contains(t, w.Body.String(), `"status":"shipped"`)

	w = do(r, http.MethodPatch, "/orders/"+id+"/status", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = apperrors.InvalidTransition("delivered", "paid")
	w = do(r, http.MethodPatch, "/orders/"+id+"/status", token, `{"status":"paid"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}
