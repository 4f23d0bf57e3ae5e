package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"
)

// Gin keys set by AuthMiddleware.
const (
	KeyUserID     = "user_id"
	KeyEmployeeID = "employee_id"
	KeyCompanyID  = "company_id"
	KeyRole       = "role"
)

// AuthMiddleware validates an HS256 bearer access token signed with secret.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenString == "" {
			response.Abort(c, autherrors.ErrTokenMissing)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, autherrors.ErrTokenExpired)
				return
			}
			response.Abort(c, autherrors.ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Abort(c, autherrors.ErrInvalidToken)
			return
		}
		if typ, _ := claims["typ"].(string); typ != "" && typ != "access" {
			response.Abort(c, autherrors.ErrInvalidToken)
			return
		}

		userID, _ := claims["user_id"].(string)
		companyID, _ := claims["company_id"].(string)
		if userID == "" || companyID == "" {
			response.Abort(c, autherrors.ErrInvalidToken)
			return
		}
		employeeID, _ := claims["employee_id"].(string)
		role, _ := claims["role"].(string)

		c.Set(KeyUserID, userID)
		c.Set(KeyEmployeeID, employeeID)
		c.Set(KeyCompanyID, companyID)
		c.Set(KeyRole, role)

		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		ctx = contextutil.WithRole(ctx, role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
