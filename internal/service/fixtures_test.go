package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
)

// testEnv wires the report flow over in-memory repositories with a fixed
// clock and synchronous email dispatch.
type testEnv struct {
	repo      *repository.Repository
	m         *mockRepos
	mailer    *mockMailer
	docs      *mockDocStore
	now       time.Time
	policy    *accessPolicy
	notif     *notificationService
	reports   *reportService
	periods   PeriodService
	dashboard *dashboardService
}

func newTestEnv(now time.Time) *testEnv {
	repo, m := newMockRepos()
	logger := zap.NewNop()
	env := &testEnv{
		repo:   repo,
		m:      m,
		mailer: &mockMailer{},
		docs:   &mockDocStore{},
		now:    now,
		policy: newAccessPolicy(repo),
	}
	clock := func() time.Time { return env.now }

	env.notif = NewNotificationService(repo, env.mailer, config.ReminderConfig{DedupeWindow: 24 * time.Hour}, logger).(*notificationService)
	env.notif.now = clock
	env.notif.dispatch = syncDispatch

	env.reports = NewReportService(repo, env.policy, env.notif, env.docs, logger).(*reportService)
	env.reports.now = clock

	env.periods = NewPeriodService(repo, logger)

	env.dashboard = NewDashboardService(repo, env.policy, logger).(*dashboardService)
	env.dashboard.now = clock
	return env
}

func (e *testEnv) addCompany(code string, active bool) *model.Company {
	c := &model.Company{Name: "Company " + code, Code: code, IsActive: active}
	_ = e.m.companies.Create(context.Background(), c)
	return c
}

func (e *testEnv) addUser(username, role string, opts ...func(u *model.User)) *model.User {
	u := &model.User{
		Username: username,
		Name:     username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(u)
	}
	_ = e.m.users.Create(context.Background(), u)
	return u
}

func withCompany(code string) func(u *model.User) {
	return func(u *model.User) { u.CompanyCode = &code }
}

func withDepartment(dept string) func(u *model.User) {
	return func(u *model.User) { u.Department = &dept }
}

func inactive(u *model.User) { u.IsActive = false }

func (e *testEnv) addTemplate(name string, units []string, daysBefore int) *model.ReportTemplate {
	t := &model.ReportTemplate{
		Name: name,
		Fields: []model.FieldSpec{
			{ID: "revenue", Label: "Revenue", Type: model.FieldNumber, Required: true},
			{ID: "notes", Label: "Notes", Type: model.FieldTextarea},
		},
		Department:         "Finance",
		RequiredUnits:      units,
		PeriodType:         model.PeriodQuarterly,
		DaysBeforeReminder: daysBefore,
		IsActive:           true,
		CreatedBy:          "user-admin",
	}
	_ = e.m.templates.Create(context.Background(), t)
	return t
}

func (e *testEnv) addReport(tpl *model.ReportTemplate, c *model.Company, period string, due time.Time) *model.Report {
	r := model.Report{
		TemplateID:  tpl.TemplateID,
		PeriodID:    "period-" + period,
		CompanyID:   c.CompanyID,
		CompanyName: c.Name,
		CompanyCode: c.Code,
		Period:      period,
		DueDate:     due,
		Status:      model.StatusPending,
		Data:        map[string]interface{}{},
	}
	_ = e.m.reports.BatchCreate(context.Background(), []model.Report{r})
	id := e.m.reports.order[len(e.m.reports.order)-1]
	stored, _ := e.m.reports.GetByID(context.Background(), id)
	return stored
}

func callerOf(u *model.User) Caller {
	return Caller{UserID: u.UserID, Role: u.Role, CompanyCode: u.CompanyCodeValue()}
}

var adminCaller = Caller{UserID: "user-root", Role: model.RoleAdmin}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *testEnv) allReports() []model.Report {
	rs, _, _ := e.m.reports.List(context.Background(), repository.ReportFilter{Now: e.now}, 0, 0)
	return rs
}

func (e *testEnv) stored(id string) *model.Report {
	r, _ := e.m.reports.GetByID(context.Background(), id)
	return r
}
