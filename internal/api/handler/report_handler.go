package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler report endpoints.
type ReportHandler struct {
	reportSvc      service.ReportService
	calendarSvc    service.CalendarService
	maxUploadBytes int64
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportSvc service.ReportService, calendarSvc service.CalendarService, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, calendarSvc: calendarSvc, maxUploadBytes: maxUploadBytes}
}

// ListReports GET /api/v1/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	page, err := h.reportSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OKPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// GetReport GET /api/v1/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// SubmitReport POST /api/v1/reports/:id/submit
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var req dto.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Submit(c.Request.Context(), caller, c.Param("id"), req.Data)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// UploadReport POST /api/v1/reports/:id/upload
// Multipart field "file" holding the filled-in workbook.
func (h *ReportHandler) UploadReport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		uploadFailed(c, err, 14101)
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "file too large")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, 14102, "could not read uploaded file")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Upload(c.Request.Context(), caller, c.Param("id"), content)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// ExportReport GET /api/v1/reports/:id/export
func (h *ReportHandler) ExportReport(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.Export(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	sendXLSX(c, filename, buf.Bytes())
}

// DownloadFile GET /api/v1/reports/:id/file
// Archived workbook. Stores with their own access control get a redirect.
func (h *ReportHandler) DownloadFile(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	file, err := h.reportSvc.File(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	if file.RedirectURL != "" {
		c.Redirect(http.StatusFound, file.RedirectURL)
		return
	}
	sendXLSX(c, file.Name, file.Content)
}

// ForceStatus PUT /api/v1/reports/:id/status
func (h *ReportHandler) ForceStatus(c *gin.Context) {
	var req dto.ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.ForceStatus(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// Calendar GET /api/v1/reports/calendar.ics
func (h *ReportHandler) Calendar(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.Feed(c.Request.Context(), caller)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=report-due-dates.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrReportAlreadySubmitted):
		response.Conflict(c, 14002, err.Error())
	case errors.Is(err, service.ErrReportNoFile):
		response.NotFound(c, 14005, err.Error())
	case errors.Is(err, service.ErrReopenSubmitted):
		response.Conflict(c, 14003, err.Error())
	case errors.Is(err, service.ErrAccessDenied), errors.Is(err, service.ErrCompanyUnresolved):
		response.Forbidden(c, 14004, err.Error())
	default:
		respondError(c, err, 14000)
	}
}

// sendXLSX writes an attachment with an RFC 5987 encoded file name.
func sendXLSX(c *gin.Context, filename string, content []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, content)
}
