package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

// PeriodHandler reporting period endpoints.
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler creates a PeriodHandler.
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// ListPeriods GET /api/v1/periods
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	var req dto.PeriodListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	periods, err := h.periodSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, gin.H{"list": periods})
}

// GetPeriod GET /api/v1/periods/:id
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	period, err := h.periodSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// CreatePeriod POST /api/v1/periods
// Creates the period and one pending report per required active company.
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.periodSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 13201, err.Error())
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 13202, err.Error())
	case errors.Is(err, service.ErrPeriodExists):
		response.Conflict(c, 13203, err.Error())
	case errors.Is(err, service.ErrTemplateDormant):
		response.BadRequest(c, 13204, err.Error())
	default:
		respondError(c, err, 13200)
	}
}
