package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/services/common/auth"
	"github.com/yashrajoria/storefront/services/common/middleware"
	"github.com/yashrajoria/storefront/services/order-service/controllers"
)

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, parser *auth.TokenParser) {
	orders := r.Group("/orders")
	orders.Use(middleware.TenantAuth(parser))
	{
		orders.GET("", oc.GetOrders)
		orders.GET("/:id", oc.GetOrderByID)
		orders.PATCH("/:id/status", oc.UpdateOrderStatus)
	}
}
