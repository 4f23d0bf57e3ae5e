package rbac

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-hrms/internal/domain"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// Enforce answers whether the caller's own role may perform an action.
func (h *Handler) Enforce(c *gin.Context) {
	var req domain.EnforceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.MapValidationError(err))
		return
	}
	req.Role = c.GetString("role")

	allowed, err := h.service.Enforce(req)
	if err != nil {
		h.logger.Error("enforce failed", zap.Error(err))
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, domain.EnforceResponse{Allowed: allowed}, nil)
}

func (h *Handler) MyPermissions(c *gin.Context) {
	role := c.GetString("role")
	perms, err := h.service.Permissions(role)
	if err != nil {
		if errors.Is(err, ErrUnknownRole) {
			response.Fail(c, apperror.ErrForbidden)
			return
		}
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, domain.PermissionResponse{Role: role, Permissions: perms}, nil)
}
