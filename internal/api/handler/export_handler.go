package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

// ExportHandler bulk spreadsheet exports.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportReports GET /api/v1/export/reports?period=&template_id=&status=
func (h *ExportHandler) ExportReports(c *gin.Context) {
	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportReports(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendXLSX(c, filename, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoReports):
		response.NotFound(c, 16101, err.Error())
	default:
		respondError(c, err, 16100)
	}
}
