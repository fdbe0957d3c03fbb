package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/services/common/auth"
	"github.com/yashrajoria/storefront/services/common/middleware"
	"github.com/yashrajoria/storefront/services/notification-service/controllers"
)

func RegisterNotificationRoutes(r *gin.Engine, nc *controllers.NotificationController, parser *auth.TokenParser) {
	n := r.Group("/notifications")
	n.Use(middleware.TenantAuth(parser))
	n.GET("/logs", nc.GetLogs)
}
