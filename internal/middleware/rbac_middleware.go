package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-hrms/internal/domain"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"
)

// RBACService is anything that can answer a domain.EnforceRequest.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		if role == "" {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Abort(c, err)
			return
		}

		if !allowed {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Warn("rbac denied",
				zap.String("role", role),
				zap.String("required", resource+":"+action),
			)
			response.Abort(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}
