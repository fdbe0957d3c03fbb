package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/middleware"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"github.com/yashrajoria/storefront/services/notification-service/services"
)

type NotificationController struct {
	service services.NotificationService
}

func NewNotificationController(svc services.NotificationService) *NotificationController {
	return &NotificationController{service: svc}
}

// GetLogs handles GET /notifications/logs for the authenticated tenant.
func (nc *NotificationController) GetLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filter := models.NotificationFilter{
		TenantID: middleware.TenantID(c),
		OrderID:  c.Query("order_id"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	logs, total, err := nc.service.GetLogs(c.Request.Context(), filter)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("failed to load notification logs", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": total,
		"page":  filter.Page,
	})
}
