package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// In-memory repositories. Reads return copies so that services mutating a
// loaded row do not change what is stored until they write it back.

type mockRepos struct {
	users         *mockUserRepo
	companies     *mockCompanyRepo
	templates     *mockTemplateRepo
	periods       *mockPeriodRepo
	reports       *mockReportRepo
	notifications *mockNotificationRepo
	auditLogs     *mockAuditLogRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:         newMockUserRepo(),
		companies:     newMockCompanyRepo(),
		templates:     newMockTemplateRepo(),
		notifications: newMockNotificationRepo(),
		auditLogs:     &mockAuditLogRepo{},
	}
	m.periods = &mockPeriodRepo{periods: make(map[string]*model.ReportPeriod), templates: m.templates}
	m.reports = &mockReportRepo{reports: make(map[string]*model.Report), templates: m.templates}

	repo := &repository.Repository{
		User:         m.users,
		Company:      m.companies,
		Template:     m.templates,
		Period:       m.periods,
		Report:       m.reports,
		Notification: m.notifications,
		AuditLog:     m.auditLogs,
	}
	return repo, m
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	order     []string
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %s: %w", user.Username, gorm.ErrDuplicatedKey)
		}
	}
	cp := *user
	m.users[user.UserID] = &cp
	m.order = append(m.order, user.UserID)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, id := range m.order {
		u := m.users[id]
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.CompanyCode != "" && u.CompanyCodeValue() != f.CompanyCode {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) filter(keep func(u *model.User) bool) []model.User {
	var out []model.User
	for _, id := range m.order {
		if u := m.users[id]; u.IsActive && keep(u) {
			out = append(out, *u)
		}
	}
	return out
}

func (m *mockUserRepo) ListActiveByRole(_ context.Context, role string) ([]model.User, error) {
	return m.filter(func(u *model.User) bool { return u.Role == role }), nil
}

func (m *mockUserRepo) ListActiveMembers(_ context.Context, companyCode string) ([]model.User, error) {
	return m.filter(func(u *model.User) bool {
		return u.Role == model.RoleMemberUnit && u.CompanyCodeValue() == companyCode
	}), nil
}

func (m *mockUserRepo) ListActiveByDepartment(_ context.Context, department string) ([]model.User, error) {
	return m.filter(func(u *model.User) bool {
		return u.Role == model.RoleDepartment && u.Department != nil && *u.Department == department
	}), nil
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	companies map[string]*model.Company
	createErr error
	updateErr error
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[string]*model.Company)}
}

func (m *mockCompanyRepo) Create(_ context.Context, c *model.Company) error {
	if m.createErr != nil {
		return m.createErr
	}
	if c.CompanyID == "" {
		c.CompanyID = "company-" + c.Code
	}
	cp := *c
	m.companies[c.CompanyID] = &cp
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) find(match func(c *model.Company) bool) (*model.Company, error) {
	for _, c := range m.companies {
		if match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) GetByCode(_ context.Context, code string) (*model.Company, error) {
	return m.find(func(c *model.Company) bool { return c.Code == code })
}

func (m *mockCompanyRepo) GetByName(_ context.Context, name string) (*model.Company, error) {
	return m.find(func(c *model.Company) bool { return c.Name == name })
}

func (m *mockCompanyRepo) Update(_ context.Context, c *model.Company) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *c
	m.companies[c.CompanyID] = &cp
	return nil
}

func (m *mockCompanyRepo) sorted(keep func(c *model.Company) bool) []model.Company {
	var out []model.Company
	for _, c := range m.companies {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (m *mockCompanyRepo) List(_ context.Context, activeOnly bool) ([]model.Company, error) {
	return m.sorted(func(c *model.Company) bool { return !activeOnly || c.IsActive }), nil
}

func (m *mockCompanyRepo) ListActiveByCodes(_ context.Context, codes []string) ([]model.Company, error) {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	return m.sorted(func(c *model.Company) bool { return c.IsActive && want[c.Code] }), nil
}

// ── Mock TemplateRepository ──

type mockTemplateRepo struct {
	templates map[string]*model.ReportTemplate
	createErr error
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[string]*model.ReportTemplate)}
}

func (m *mockTemplateRepo) Create(_ context.Context, t *model.ReportTemplate) error {
	if m.createErr != nil {
		return m.createErr
	}
	if t.TemplateID == "" {
		t.TemplateID = fmt.Sprintf("tpl-%d", len(m.templates)+1)
	}
	cp := *t
	m.templates[t.TemplateID] = &cp
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id string) (*model.ReportTemplate, error) {
	if t, ok := m.templates[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTemplateRepo) GetByName(_ context.Context, name string) (*model.ReportTemplate, error) {
	for _, t := range m.templates {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTemplateRepo) List(_ context.Context, activeOnly bool) ([]model.ReportTemplate, error) {
	var out []model.ReportTemplate
	for _, t := range m.templates {
		if !activeOnly || t.IsActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods   map[string]*model.ReportPeriod
	templates *mockTemplateRepo
	createErr error
}

func (m *mockPeriodRepo) Create(_ context.Context, p *model.ReportPeriod) error {
	if m.createErr != nil {
		return m.createErr
	}
	if p.PeriodID == "" {
		p.PeriodID = fmt.Sprintf("period-%d", len(m.periods)+1)
	}
	cp := *p
	cp.Template = nil
	m.periods[p.PeriodID] = &cp
	return nil
}

func (m *mockPeriodRepo) GetByID(ctx context.Context, id string) (*model.ReportPeriod, error) {
	p, ok := m.periods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Template, _ = m.templates.GetByID(ctx, p.TemplateID)
	return &cp, nil
}

func (m *mockPeriodRepo) GetByTemplateAndLabel(_ context.Context, templateID, label string) (*model.ReportPeriod, error) {
	for _, p := range m.periods {
		if p.TemplateID == templateID && p.Period == label {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context, f repository.PeriodFilter) ([]model.ReportPeriod, error) {
	var out []model.ReportPeriod
	for _, p := range m.periods {
		if f.TemplateID != "" && p.TemplateID != f.TemplateID {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	mu        sync.Mutex
	reports   map[string]*model.Report
	order     []string
	templates *mockTemplateRepo
	batchErr  error
}

func (m *mockReportRepo) withTemplate(r *model.Report) model.Report {
	cp := *r
	if t, ok := m.templates.templates[r.TemplateID]; ok {
		tc := *t
		cp.Template = &tc
	}
	return cp
}

func (m *mockReportRepo) put(r model.Report) {
	if r.ReportID == "" {
		r.ReportID = fmt.Sprintf("report-%d", len(m.reports)+1)
	}
	if r.Version == 0 {
		r.Version = 1
	}
	r.Template = nil
	m.reports[r.ReportID] = &r
	m.order = append(m.order, r.ReportID)
}

func (m *mockReportRepo) BatchCreate(_ context.Context, reports []model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return m.batchErr
	}
	seen := make(map[string]bool)
	for _, r := range m.reports {
		seen[r.TemplateID+"|"+r.Period+"|"+r.CompanyCode] = true
	}
	for _, r := range reports {
		key := r.TemplateID + "|" + r.Period + "|" + r.CompanyCode
		if seen[key] {
			return fmt.Errorf("duplicate report %s", key)
		}
		seen[key] = true
	}
	for i := range reports {
		m.put(reports[i])
	}
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withTemplate(r)
	return &cp, nil
}

func (m *mockReportRepo) matches(r *model.Report, f repository.ReportFilter) bool {
	if f.CompanyID != "" && r.CompanyID != f.CompanyID {
		return false
	}
	if f.TemplateID != "" && r.TemplateID != f.TemplateID {
		return false
	}
	if f.PeriodID != "" && r.PeriodID != f.PeriodID {
		return false
	}
	if f.Period != "" && r.Period != f.Period {
		return false
	}
	if f.Status != "" && EffectiveStatus(r, f.Now) != f.Status {
		return false
	}
	return true
}

func (m *mockReportRepo) List(_ context.Context, f repository.ReportFilter, offset, limit int) ([]model.Report, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Report
	for _, id := range m.order {
		if r := m.reports[id]; m.matches(r, f) {
			all = append(all, m.withTemplate(r))
		}
	}
	total := int64(len(all))
	if limit <= 0 {
		return all, total, nil
	}
	if offset >= len(all) {
		return []model.Report{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockReportRepo) ListPendingDueBetween(_ context.Context, from, to time.Time) ([]model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Report
	for _, id := range m.order {
		r := m.reports[id]
		if r.Status == model.StatusPending && r.DueDate.After(from) && !r.DueDate.After(to) {
			out = append(out, m.withTemplate(r))
		}
	}
	return out, nil
}

func (m *mockReportRepo) Submit(_ context.Context, report *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reports[report.ReportID]
	if !ok || stored.Status != model.StatusPending || stored.Version != report.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = report.Status
	stored.SubmittedAt = report.SubmittedAt
	stored.SubmittedBy = report.SubmittedBy
	stored.Data = report.Data
	stored.Version++
	report.Version = stored.Version
	return nil
}

func (m *mockReportRepo) versioned(report *model.Report, apply func(stored *model.Report)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reports[report.ReportID]
	if !ok || stored.Version != report.Version {
		return pkgerrors.ErrOptimisticLock
	}
	apply(stored)
	stored.Version++
	report.Version = stored.Version
	return nil
}

func (m *mockReportRepo) SetFileURL(_ context.Context, report *model.Report) error {
	return m.versioned(report, func(s *model.Report) { s.FileURL = report.FileURL })
}

func (m *mockReportRepo) ForceStatus(_ context.Context, report *model.Report) error {
	return m.versioned(report, func(s *model.Report) { s.Status = report.Status })
}

func (m *mockReportRepo) CountByStatus(_ context.Context, f repository.ReportFilter) ([]repository.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.Status = ""
	idx := make(map[string]int)
	var out []repository.StatusCount
	for _, id := range m.order {
		r := m.reports[id]
		if !m.matches(r, f) {
			continue
		}
		status := EffectiveStatus(r, f.Now)
		key := r.Period + "|" + status
		if i, ok := idx[key]; ok {
			out[i].Count++
			continue
		}
		idx[key] = len(out)
		out = append(out, repository.StatusCount{Period: r.Period, EffectiveStatus: status, Count: 1})
	}
	return out, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
	batchErr      error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return m.BatchCreate(ctx, []model.Notification{*n})
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, ns []model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, n := range ns {
		if n.NotificationID == "" {
			n.NotificationID = fmt.Sprintf("notif-%d", len(m.notifications)+1)
		}
		m.notifications = append(m.notifications, n)
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.NotificationID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			all = append(all, n)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkAsRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].NotificationID == id {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) ExistsSince(_ context.Context, userID, reportID, typ string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID && n.ReportID != nil && *n.ReportID == reportID &&
			n.Type == typ && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockNotificationRepo) byType(typ string) []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	logs []model.AuditLog
}

func (m *mockAuditLogRepo) Create(_ context.Context, log *model.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) ListRecent(_ context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > len(m.logs) {
		limit = len(m.logs)
	}
	return m.logs[:limit], nil
}

// ── Collaborators ──

type sentMail struct {
	to, subject, body string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type upload struct {
	path, name string
	size       int
}

type mockDocStore struct {
	uploads []upload
	files   map[string][]byte
	fail    bool
}

func (m *mockDocStore) Upload(_ context.Context, data []byte, destPath, fileName string) (string, error) {
	if m.fail {
		return "", fmt.Errorf("graph: 503 service unavailable")
	}
	m.uploads = append(m.uploads, upload{path: destPath, name: fileName, size: len(data)})
	url := "https://docs.example.com/" + destPath + "/" + fileName
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[url] = data
	return url, nil
}

func (m *mockDocStore) Read(_ context.Context, fileURL string) ([]byte, error) {
	data, ok := m.files[fileURL]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", fileURL, os.ErrNotExist)
	}
	return data, nil
}

// linkOnlyStore archives but cannot read files back.
type linkOnlyStore struct{ inner *mockDocStore }

func (s linkOnlyStore) Upload(ctx context.Context, data []byte, destPath, fileName string) (string, error) {
	return s.inner.Upload(ctx, data, destPath, fileName)
}

func syncDispatch(ctx context.Context, fn func(ctx context.Context)) { fn(ctx) }
