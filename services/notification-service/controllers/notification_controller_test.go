package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yashrajoria/storefront/services/common/middleware"
	"github.com/yashrajoria/storefront/services/notification-service/controllers"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"github.com/yashrajoria/storefront/services/notification-service/services"
)

type mockSvc struct {
	services.NotificationService
	filter models.NotificationFilter
}

func (m *mockSvc) GetLogs(_ context.Context, f models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	m.filter = f
	return []models.NotificationLog{{OrderID: "o-1", Status: models.StatusSent}}, 1, nil
}

func TestGetLogs_UsesAuthenticatedTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &mockSvc{}
	r := gin.New()
	r.GET("/notifications/logs", func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, int64(7))
	}, controllers.NewNotificationController(svc).GetLogs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications/logs?status=sent&page=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), svc.filter.TenantID)
	assert.Equal(t, "sent", svc.filter.Status)
	assert.Equal(t, 2, svc.filter.Page)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
