package rbac

import (
	"github.com/gin-gonic/gin"

	"go-hrms/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.Guard) {
	group := r.Group("/rbac")
	group.Use(guard.Authenticated()...)
	{
		group.GET("/permissions/me", guard.Require("rbac", "read"), handler.MyPermissions)
		group.POST("/enforce", guard.Require("rbac", "read"), handler.Enforce)
	}
}
