package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// AdminHandler operator endpoints.
type AdminHandler struct {
	notificationSvc service.NotificationService
	auditSvc        service.AuditService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(notificationSvc service.NotificationService, auditSvc service.AuditService) *AdminHandler {
	return &AdminHandler{notificationSvc: notificationSvc, auditSvc: auditSvc}
}

// SendReminders POST /api/v1/admin/send-reminders
// Runs one reminder sweep synchronously.
func (h *AdminHandler) SendReminders(c *gin.Context) {
	result, err := h.notificationSvc.SendReminders(c.Request.Context())
	if err != nil {
		respondError(c, err, 16001)
		return
	}

	response.OK(c, result)
}

// ListAuditLogs GET /api/v1/admin/audit-logs?limit=
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, 10001, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	logs, err := h.auditSvc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, 16002)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
