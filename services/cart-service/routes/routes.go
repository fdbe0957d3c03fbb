package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/services/cart-service/controllers"
	"github.com/yashrajoria/storefront/services/common/middleware"
)

func RegisterCartRoutes(r *gin.Engine, cc *controllers.CartController, perMinute int) {
	cart := r.Group("/cart")
	if perMinute > 0 {
		cart.Use(middleware.RateLimit(perMinute, perMinute/6+1))
	}
	cart.Use(controllers.CartScope())
	{
		cart.GET("", cc.GetCart)
		cart.DELETE("", cc.ClearCart)
		cart.POST("/items", cc.AddItem)
		cart.PUT("/items/:product_id", cc.SetQuantity)
		cart.DELETE("/items/:product_id", cc.RemoveItem)
		cart.POST("/checkout", cc.Checkout)
	}
}
