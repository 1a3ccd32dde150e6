package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	notificationHandler *NotificationHandler,
	scanHandler *ScanHandler,
	pushHandler *PushHandler,
	emailHandler *EmailHandler,
	limiter *RateLimiter,
	jwtSecret string,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	// Public
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/scan/overdue", limiter.Middleware(), scanHandler.Trigger)
	r.GET("/scan/overdue", limiter.Middleware(), scanHandler.Trigger)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/notifications", notificationHandler.Create)
		auth.GET("/notifications", notificationHandler.List)
		auth.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		auth.POST("/notifications/:id/read", notificationHandler.MarkRead)
		auth.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		auth.POST("/push", limiter.Middleware(), pushHandler.Send)
		auth.POST("/email", limiter.Middleware(), emailHandler.Send)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
