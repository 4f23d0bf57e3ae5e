package company

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("company.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) GetMe(c *gin.Context) {
	comp, err := h.service.GetCurrent(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, comp, nil)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.MapValidationError(err))
		return
	}

	comp, err := h.service.UpdateCurrent(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("update company failed", zap.Error(err))
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, comp, nil)
}
