package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-hrms/internal/shared/response"
	"go-hrms/internal/tenant"
)

// TenantContext binds the authenticated company to the request context for
// the rest of the chain and restores the original request when the chain
// returns, even on abort or panic.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, err := uuid.Parse(c.GetString(KeyCompanyID))
		if err != nil || companyID == uuid.Nil {
			response.Abort(c, tenant.ErrContextMissing)
			return
		}

		original := c.Request
		defer func() { c.Request = original }()

		c.Request = original.WithContext(tenant.WithCompanyID(original.Context(), companyID))
		c.Next()
	}
}
