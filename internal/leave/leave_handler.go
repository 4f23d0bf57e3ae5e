package leave

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"
)

type Handler struct {
	service  Service
	holidays HolidayService
	logger   *zap.Logger
}

func NewHandler(service Service, holidays HolidayService, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, holidays: holidays, logger: l}
}

// getActorID prefers the caller's employee id and falls back to the user id
// for principals without an employee record.
func getActorID(c *gin.Context) string {
	actorID := c.GetString(middleware.KeyEmployeeID)
	if actorID == "" {
		actorID = c.GetString(middleware.KeyUserID)
	}
	return actorID
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	var req DecisionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), c.Param("id"), getActorID(c), req.Comments)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req DecisionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), c.Param("id"), getActorID(c), req.Comments)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	resp, err := h.service.Cancel(c.Request.Context(), c.Param("id"), getActorID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// GetMine lists the caller's own requests.
func (h *Handler) GetMine(c *gin.Context) {
	actor, err := uuid.Parse(getActorID(c))
	if err != nil {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}
	h.list(c, func(f *ListFilter) { f.EmployeeID = &actor })
}

// GetTeam lists requests whose manager on record is the caller.
func (h *Handler) GetTeam(c *gin.Context) {
	actor, err := uuid.Parse(getActorID(c))
	if err != nil {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}
	h.list(c, func(f *ListFilter) { f.ManagerID = &actor })
}

// GetCompany lists every request of the company, optionally for one employee.
func (h *Handler) GetCompany(c *gin.Context) {
	var employeeID *uuid.UUID
	if raw := c.Query("employee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeServiceError(c, apperror.InvalidField("employee_id"))
			return
		}
		employeeID = &id
	}
	h.list(c, func(f *ListFilter) { f.EmployeeID = employeeID })
}

func (h *Handler) list(c *gin.Context, scope func(*ListFilter)) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	year, _ := strconv.Atoi(c.Query("year"))

	filter := ListFilter{
		Status:    c.Query("status"),
		LeaveType: c.Query("leave_type"),
		Year:      year,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	scope(&filter)

	resp, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) MyBalances(c *gin.Context) {
	h.balances(c, getActorID(c))
}

func (h *Handler) EmployeeBalances(c *gin.Context) {
	h.balances(c, c.Param("employee_id"))
}

func (h *Handler) balances(c *gin.Context, employeeID string) {
	year, _ := strconv.Atoi(c.Query("year"))

	resp, err := h.service.Balances(c.Request.Context(), employeeID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListHolidays(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	resp, err := h.holidays.List(c.Request.Context(), year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CreateHoliday(c *gin.Context) {
	var req CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.holidays.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) DeleteHoliday(c *gin.Context) {
	if err := h.holidays.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
