package employee

import (
	"github.com/gin-gonic/gin"

	"go-hrms/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	employees := r.Group("/employees")
	employees.Use(guard.Authenticated()...)
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			guard.Require("employee", "read"),
			handler.GetAll,
		)

		employees.GET("/options",
			middleware.RateLimitByUser(5, 20),
			guard.Require("employee", "read"),
			handler.GetOptions,
		)

		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			guard.Require("employee", "read"),
			handler.GetByID,
		)

		employees.POST("",
			middleware.RateLimitByUser(0.5, 2),
			guard.Require("employee", "create"),
			handler.Create,
		)

		employees.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			guard.Require("employee", "update"),
			handler.Update,
		)

		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.05, 1),
			guard.Require("employee", "delete"),
			handler.Delete,
		)
	}
}
