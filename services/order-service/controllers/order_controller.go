package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/middleware"
	"github.com/yashrajoria/storefront/services/order-service/models"
	"github.com/yashrajoria/storefront/services/order-service/services"
)

type OrderController struct {
	service services.OrderService
}

func NewOrderController(svc services.OrderService) *OrderController {
	return &OrderController{service: svc}
}

// GetOrders handles GET /orders
func (oc *OrderController) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	result, err := oc.service.ListOrders(c.Request.Context(), middleware.TenantID(c), c.Query("status"), page, pageSize)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrderByID handles GET /orders/:id
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.service.GetOrder(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /orders/:id/status
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	order, err := oc.service.UpdateStatus(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req.Status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
