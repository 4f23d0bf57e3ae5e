package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-hrms/internal/shared/contextutil"
)

const HeaderRequestID = "X-Request-ID"

// RequestID makes sure every request carries an id, echoed in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header(HeaderRequestID, rid)
		c.Set("request_id", rid)

		ctx := contextutil.WithRequestID(c.Request.Context(), rid)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ContextLogger stores a logger decorated with the request, user and company
// ids in the request context. It runs after AuthMiddleware.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rid := contextutil.GetRequestID(ctx)
		if rid == "" {
			rid = uuid.New().String()
			c.Header(HeaderRequestID, rid)
			ctx = contextutil.WithRequestID(ctx, rid)
		}

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("user_id", c.GetString(KeyUserID)),
			zap.String("company_id", c.GetString(KeyCompanyID)),
		)

		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))
		c.Next()
	}
}
