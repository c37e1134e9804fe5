package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/internal/api/handler"
	"github.com/blackrosevn/Dev02-Reporting/internal/api/middleware"
	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/pkg/jwt"
)

// Deps are the router's collaborators. Blacklist and Limiter may be nil
// when Redis is not configured.
type Deps struct {
	Config    *config.Config
	Handler   *handler.Handler
	JWT       *jwt.Manager
	Blacklist middleware.Blacklist
	Limiter   middleware.Limiter
	Logger    *zap.Logger
}

// Setup builds the gin engine.
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			d.Logger.Fatal("register validators", zap.Error(err))
		}
	}

	cfg := d.Config
	h := d.Handler
	maxBody := cfg.Server.MaxUploadMB << 20

	r := gin.New()
	r.MaxMultipartMemory = maxBody

	// ── Global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBody))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	jwtAuth := middleware.JWTAuth(d.JWT, d.Blacklist, d.Logger)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	authors := middleware.RoleAuth(model.RoleAdmin, model.RoleDepartment)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(d.Limiter, cfg.Server.RateLimit, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(jwtAuth)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/me", h.Auth.Me)

			users := authorized.Group("/users", adminOnly)
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.POST("/import", h.User.ImportUsers)
			}

			companies := authorized.Group("/companies")
			{
				companies.GET("", h.Company.ListCompanies)
				companies.POST("", adminOnly, h.Company.CreateCompany)
				companies.PUT("/:id", adminOnly, h.Company.UpdateCompany)
			}

			templates := authorized.Group("/templates")
			{
				templates.GET("", h.Template.ListTemplates)
				templates.GET("/:id", h.Template.GetTemplate)
				templates.POST("", authors, h.Template.CreateTemplate)
			}

			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.ListPeriods)
				periods.GET("/:id", h.Period.GetPeriod)
				periods.POST("", authors, h.Period.CreatePeriod)
			}

			// scope checks happen in the report service
			reports := authorized.Group("/reports")
			{
				reports.GET("", h.Report.ListReports)
				reports.GET("/calendar.ics", h.Report.Calendar)
				reports.GET("/:id", h.Report.GetReport)
				reports.POST("/:id/submit", h.Report.SubmitReport)
				reports.POST("/:id/upload", h.Report.UploadReport)
				reports.GET("/:id/export", h.Report.ExportReport)
				reports.GET("/:id/file", h.Report.DownloadFile)
				reports.PUT("/:id/status", adminOnly, h.Report.ForceStatus)
			}

			authorized.GET("/dashboard/stats", h.Dashboard.Stats)

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.POST("/:id/read", h.Notification.MarkAsRead)
			}

			admin := authorized.Group("/admin", adminOnly)
			{
				admin.POST("/send-reminders", h.Admin.SendReminders)
				admin.GET("/audit-logs", h.Admin.ListAuditLogs)
			}

			export := authorized.Group("/export", authors)
			{
				export.GET("/reports", h.Export.ExportReports)
			}
		}
	}

	return r
}
