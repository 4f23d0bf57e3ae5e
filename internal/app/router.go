package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-hrms/internal/auth"
	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/middleware"
	"go-hrms/internal/rbac"
)

// BuildRouter mounts every HTTP module under /api/v1 plus /metrics and
// /healthz.
func (a *App) BuildRouter(m *Modules) *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		a.Metrics.GinMiddleware(),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	guard := middleware.Guard{
		JWTSecret: a.Config.Auth.JWTSecret,
		RBAC:      m.RBAC,
		Logger:    a.Logger,
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(m.Auth, a.Logger)
	companyHandler := company.NewHandler(m.Companies, a.Logger)
	employeeHandler := employee.NewHandler(m.Employees, a.Logger)
	leaveHandler := leave.NewHandler(m.Leave, m.Holidays, a.Logger)
	rbacHandler := rbac.NewHandler(m.RBAC, a.Logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, guard)
		company.RegisterRoutes(api, companyHandler, guard)
		employee.RegisterRoutes(api, employeeHandler, guard)
		leave.RegisterRoutes(api, leaveHandler, guard, a.Redis, a.Config.HTTP.IdempotencyTTL)
		rbac.RegisterRoutes(api, rbacHandler, guard)
	}

	return router
}
