package company

import (
	"github.com/gin-gonic/gin"

	"go-hrms/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	company := r.Group("/companies")
	company.Use(guard.Authenticated()...)
	{
		company.GET("/me",
			middleware.RateLimitByUser(2, 10),
			handler.GetMe,
		)
		company.PUT("/me",
			middleware.RateLimitByUser(0.1, 1),
			guard.Require("company", "update"),
			handler.UpdateMe,
		)
	}
}
