package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

// DashboardHandler completion statistics.
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Stats GET /api/v1/dashboard/stats?period=
func (h *DashboardHandler) Stats(c *gin.Context) {
	var req dto.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	stats, err := h.dashboardSvc.Stats(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err, 15000)
		return
	}

	response.OK(c, stats)
}
