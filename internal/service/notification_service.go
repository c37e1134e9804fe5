package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
	"github.com/blackrosevn/Dev02-Reporting/pkg/mail"
)

// ── Notification errors ──

var (
	ErrNotificationNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "notification not found")
)

const emailTimeout = 30 * time.Second

// NotificationService in-app notifications and the email that follows them.
// Notification rows are authoritative; email is best effort and its failure
// never undoes a row or a status change.
type NotificationService interface {
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) (*dto.PagedResult[model.Notification], error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID, id string) error
	NotifyLate(ctx context.Context, report *model.Report, tpl *model.ReportTemplate) error
	NotifySubmitted(ctx context.Context, report *model.Report, tpl *model.ReportTemplate) error
	SendReminders(ctx context.Context) (*dto.ReminderResult, error)
}

type notificationService struct {
	repo   *repository.Repository
	mailer mail.Sender
	cfg    config.ReminderConfig
	logger *zap.Logger
	now    func() time.Time

	// dispatch runs fn off the request path.
	dispatch func(ctx context.Context, fn func(ctx context.Context))
}

// NewNotificationService mailer may be nil, which disables email.
func NewNotificationService(
	repo *repository.Repository,
	mailer mail.Sender,
	cfg config.ReminderConfig,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:     repo,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		dispatch: dispatchAsync,
	}
}

func dispatchAsync(ctx context.Context, fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) (*dto.PagedResult[model.Notification], error) {
	ns, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if ns == nil {
		ns = []model.Notification{}
	}
	return &dto.PagedResult[model.Notification]{
		List:     ns,
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("count unread failed", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ────────────────────── MarkAsRead ──────────────────────

// MarkAsRead only lets the owner flip the flag. Read is one way.
func (s *notificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("load notification failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n.UserID != userID {
		return ErrAccessDenied
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.Notification.MarkAsRead(ctx, id); err != nil {
		s.logger.Error("mark notification read failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── NotifyLate ──────────────────────

// NotifyLate alerts every active admin about a late submission.
func (s *notificationService) NotifyLate(ctx context.Context, report *model.Report, tpl *model.ReportTemplate) error {
	admins, err := s.repo.User.ListActiveByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.logger.Error("load admins failed", zap.Error(err))
		return err
	}

	title := fmt.Sprintf("Late submission: %s %s", report.CompanyCode, report.Period)
	message := fmt.Sprintf("%s submitted %q for %s after the due date %s.",
		report.CompanyName, tpl.Name, report.Period, report.DueDate.Format(dateLayout))

	return s.notifyUsers(ctx, admins, report, model.NotificationLate, title, message)
}

// ────────────────────── NotifySubmitted ──────────────────────

// NotifySubmitted tells the template's department that a report arrived.
func (s *notificationService) NotifySubmitted(ctx context.Context, report *model.Report, tpl *model.ReportTemplate) error {
	users, err := s.repo.User.ListActiveByDepartment(ctx, tpl.Department)
	if err != nil {
		s.logger.Error("load department users failed", zap.String("department", tpl.Department), zap.Error(err))
		return err
	}

	title := fmt.Sprintf("Report received: %s %s", report.CompanyCode, report.Period)
	message := fmt.Sprintf("%s submitted %q for %s.", report.CompanyName, tpl.Name, report.Period)

	return s.notifyUsers(ctx, users, report, model.NotificationSubmission, title, message)
}

// notifyUsers persists one notification per user, then emails them in the
// background.
func (s *notificationService) notifyUsers(ctx context.Context, users []model.User, report *model.Report, typ, title, message string) error {
	if len(users) == 0 {
		return nil
	}

	reportID := report.ReportID
	ns := make([]model.Notification, 0, len(users))
	for _, u := range users {
		ns = append(ns, model.Notification{
			UserID:    u.UserID,
			Title:     title,
			Message:   message,
			Type:      typ,
			ReportID:  &reportID,
			CreatedAt: s.now(),
		})
	}
	if err := s.repo.Notification.BatchCreate(ctx, ns); err != nil {
		s.logger.Error("create notifications failed",
			zap.String("type", typ), zap.String("report_id", reportID), zap.Error(err))
		return err
	}

	if s.mailer == nil {
		return nil
	}
	recipients := make([]model.User, len(users))
	copy(recipients, users)
	s.dispatch(ctx, func(ctx context.Context) {
		for _, u := range recipients {
			s.email(ctx, u, title, message)
		}
	})
	return nil
}

func (s *notificationService) email(ctx context.Context, u model.User, subject, body string) bool {
	if u.Email == "" {
		return false
	}
	if err := s.mailer.Send(ctx, u.Email, subject, body); err != nil {
		s.logger.Warn("send email failed",
			zap.String("user_id", u.UserID),
			zap.Error(pkgerrors.External("email", err)),
		)
		return false
	}
	return true
}

// ────────────────────── SendReminders ──────────────────────

// SendReminders reminds every active member of each company with a pending
// report that falls inside its template's reminder window. A (user, report)
// pair already reminded within the dedupe window is skipped.
func (s *notificationService) SendReminders(ctx context.Context) (*dto.ReminderResult, error) {
	now := s.now()
	result := &dto.ReminderResult{}

	templates, err := s.repo.Template.List(ctx, false)
	if err != nil {
		s.logger.Error("load templates failed", zap.Error(err))
		return nil, err
	}
	maxDays := defaultDaysBeforeReminder
	for _, t := range templates {
		if t.DaysBeforeReminder > maxDays {
			maxDays = t.DaysBeforeReminder
		}
	}

	candidates, err := s.repo.Report.ListPendingDueBetween(ctx, now, now.Add(days(maxDays)))
	if err != nil {
		s.logger.Error("load pending reports failed", zap.Error(err))
		return nil, err
	}

	var due []model.Report
	for _, r := range candidates {
		if InReminderWindow(&r, now) {
			due = append(due, r)
		}
	}
	result.Reports = len(due)
	if len(due) == 0 {
		return result, nil
	}

	since := now.Add(-s.cfg.DedupeWindow)
	members := make(map[string][]model.User)

	type pending struct {
		user    model.User
		subject string
		body    string
	}
	var (
		ns     []model.Notification
		emails []pending
	)
	for i := range due {
		r := &due[i]
		users, ok := members[r.CompanyCode]
		if !ok {
			users, err = s.repo.User.ListActiveMembers(ctx, r.CompanyCode)
			if err != nil {
				s.logger.Error("load company members failed", zap.String("company", r.CompanyCode), zap.Error(err))
				return nil, err
			}
			members[r.CompanyCode] = users
		}

		title, message := reminderText(r, now)
		for _, u := range users {
			if s.cfg.DedupeWindow > 0 {
				seen, err := s.repo.Notification.ExistsSince(ctx, u.UserID, r.ReportID, model.NotificationReminder, since)
				if err != nil {
					s.logger.Error("check reminder dedupe failed", zap.Error(err))
					return nil, err
				}
				if seen {
					result.Skipped++
					continue
				}
			}

			reportID := r.ReportID
			ns = append(ns, model.Notification{
				UserID:    u.UserID,
				Title:     title,
				Message:   message,
				Type:      model.NotificationReminder,
				ReportID:  &reportID,
				CreatedAt: now,
			})
			emails = append(emails, pending{user: u, subject: title, body: message})
		}
	}

	if err := s.repo.Notification.BatchCreate(ctx, ns); err != nil {
		s.logger.Error("create reminders failed", zap.Error(err))
		return nil, err
	}
	result.Notifications = len(ns)

	if s.mailer != nil {
		for _, e := range emails {
			if s.email(ctx, e.user, e.subject, e.body) {
				result.EmailsSent++
			} else {
				result.EmailsFailed++
			}
		}
	}

	s.logger.Info("reminder sweep finished",
		zap.Int("reports", result.Reports),
		zap.Int("notifications", result.Notifications),
		zap.Int("skipped", result.Skipped),
		zap.Int("emails_sent", result.EmailsSent),
		zap.Int("emails_failed", result.EmailsFailed),
	)
	return result, nil
}

// InReminderWindow reports whether a pending report is due within its
// template's daysBeforeReminder of now, and not yet past due.
func InReminderWindow(r *model.Report, now time.Time) bool {
	if r.Status != model.StatusPending || !r.DueDate.After(now) {
		return false
	}
	n := defaultDaysBeforeReminder
	if r.Template != nil && r.Template.DaysBeforeReminder >= 1 {
		n = r.Template.DaysBeforeReminder
	}
	return !r.DueDate.After(now.Add(days(n)))
}

func reminderText(r *model.Report, now time.Time) (string, string) {
	name := "report"
	if r.Template != nil {
		name = r.Template.Name
	}
	left := int(r.DueDate.Sub(now).Hours() / 24)
	title := fmt.Sprintf("Reminder: %s %s is due", name, r.Period)
	message := fmt.Sprintf("%s: %q for %s is due on %s (%d day(s) left).",
		r.CompanyName, name, r.Period, r.DueDate.Format(dateLayout), left)
	return title, message
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
