package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/services/common/middleware"
	"github.com/yashrajoria/storefront/services/payment-service/controllers"
)

// RegisterPaymentRoutes mounts the public payment endpoints. perMinute limits
// checkout and onboarding per client IP; the webhook is only signature-gated.
func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, perMinute int) {
	limited := r.Group("/")
	if perMinute > 0 {
		limited.Use(middleware.RateLimit(perMinute, perMinute/6+1))
	}
	{
		limited.POST("/checkout-session", pc.CreateCheckoutSession)
		limited.POST("/connect-onboarding", pc.ConnectOnboarding)
	}

	r.POST("/webhook/payment", pc.PaymentWebhook)
}
