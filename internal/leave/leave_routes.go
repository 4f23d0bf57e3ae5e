package leave

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-hrms/internal/middleware"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	guard middleware.Guard,
	rdb *redis.Client,
	idempotencyTTL time.Duration,
) {
	idempotent := middleware.Idempotency(rdb, idempotencyTTL)

	leaves := r.Group("/leaves")
	leaves.Use(guard.Authenticated()...)
	{
		leaves.POST("",
			middleware.RateLimitByUser(0.5, 3),
			guard.Require("leave", "create"),
			idempotent,
			handler.Submit,
		)
		leaves.GET("",
			middleware.RateLimitByUser(3, 10),
			guard.Require("leave", "read"),
			handler.GetMine,
		)
		leaves.GET("/team",
			middleware.RateLimitByUser(3, 10),
			guard.Require("leave", "read_team"),
			handler.GetTeam,
		)
		leaves.GET("/company",
			middleware.RateLimitByUser(3, 10),
			guard.Require("leave", "read_all"),
			handler.GetCompany,
		)
		leaves.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			guard.Require("leave", "read"),
			handler.GetByID,
		)
		leaves.POST("/:id/approve",
			middleware.RateLimitByUser(1, 5),
			guard.Require("leave", "approve"),
			idempotent,
			handler.Approve,
		)
		leaves.POST("/:id/reject",
			middleware.RateLimitByUser(1, 5),
			guard.Require("leave", "approve"),
			idempotent,
			handler.Reject,
		)
		leaves.POST("/:id/cancel",
			middleware.RateLimitByUser(1, 5),
			guard.Require("leave", "cancel"),
			idempotent,
			handler.Cancel,
		)
	}

	balances := r.Group("/leave-balances")
	balances.Use(guard.Authenticated()...)
	{
		balances.GET("",
			middleware.RateLimitByUser(3, 10),
			guard.Require("leave_balance", "read"),
			handler.MyBalances,
		)
		balances.GET("/:employee_id",
			middleware.RateLimitByUser(3, 10),
			guard.Require("leave_balance", "read_all"),
			handler.EmployeeBalances,
		)
	}

	holidays := r.Group("/holidays")
	holidays.Use(guard.Authenticated()...)
	{
		holidays.GET("",
			middleware.RateLimitByUser(3, 10),
			guard.Require("holiday", "read"),
			handler.ListHolidays,
		)
		holidays.POST("",
			middleware.RateLimitByUser(0.5, 2),
			guard.Require("holiday", "create"),
			handler.CreateHoliday,
		)
		holidays.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			guard.Require("holiday", "delete"),
			handler.DeleteHoliday,
		)
	}
}
