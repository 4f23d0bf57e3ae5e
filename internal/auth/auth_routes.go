package auth

import (
	"github.com/gin-gonic/gin"

	"go-hrms/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		auth.POST("/refresh", middleware.RateLimitByIP(0.5, 5), handler.RefreshToken)
	}

	protected := auth.Group("")
	protected.Use(guard.Authenticated()...)
	{
		protected.GET("/me", middleware.RateLimitByUser(2, 5), handler.Me)
		protected.POST("/register",
			middleware.RateLimitByUser(0.5, 2),
			guard.Require("user", "create"),
			handler.Register,
		)
	}
}
