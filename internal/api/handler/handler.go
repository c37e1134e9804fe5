package handler

import (
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Company      *CompanyHandler
	Template     *TemplateHandler
	Period       *PeriodHandler
	Report       *ReportHandler
	Dashboard    *DashboardHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	Export       *ExportHandler
}

// NewHandler wires handlers to services. maxUploadBytes caps spreadsheet
// uploads and user imports.
func NewHandler(svc *service.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User, maxUploadBytes),
		Company:      NewCompanyHandler(svc.Company),
		Template:     NewTemplateHandler(svc.Template),
		Period:       NewPeriodHandler(svc.Period),
		Report:       NewReportHandler(svc.Report, svc.Calendar, maxUploadBytes),
		Dashboard:    NewDashboardHandler(svc.Dashboard),
		Notification: NewNotificationHandler(svc.Notification),
		Admin:        NewAdminHandler(svc.Notification, svc.Audit),
		Export:       NewExportHandler(svc.Export),
	}
}
