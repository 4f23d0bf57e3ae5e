package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Guard bundles what protected route groups need.
type Guard struct {
	JWTSecret string
	RBAC      RBACService
	Logger    *zap.Logger
}

// Authenticated verifies the token, binds the tenant and decorates the logger.
func (g Guard) Authenticated() []gin.HandlerFunc {
	logger := g.Logger
	if logger == nil {
		logger = zap.L()
	}
	return []gin.HandlerFunc{
		AuthMiddleware(g.JWTSecret),
		TenantContext(),
		ContextLogger(logger),
	}
}

func (g Guard) Require(resource, action string) gin.HandlerFunc {
	return RBACAuthorize(g.RBAC, resource, action)
}
