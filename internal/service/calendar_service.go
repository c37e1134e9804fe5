package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
)

// CalendarService publishes pending report due dates as an iCalendar feed.
type CalendarService interface {
	Feed(ctx context.Context, caller Caller) (string, error)
}

type calendarService struct {
	repo    *repository.Repository
	policy  *accessPolicy
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewCalendarService baseURL is used for event links; it may be empty.
func NewCalendarService(repo *repository.Repository, policy *accessPolicy, baseURL string, logger *zap.Logger) CalendarService {
	return &calendarService{
		repo:    repo,
		policy:  policy,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Feed has one event per visible pending report, overdue ones included,
// with an alarm at the template's reminder lead time.
func (s *calendarService) Feed(ctx context.Context, caller Caller) (string, error) {
	scope, err := s.policy.reportScope(ctx, caller)
	if err != nil {
		return "", err
	}

	reports, _, err := s.repo.Report.List(ctx, repository.ReportFilter{
		CompanyID: scope.CompanyID,
		Now:       s.now(),
	}, 0, 0)
	if err != nil {
		s.logger.Error("list reports for calendar failed", zap.Error(err))
		return "", err
	}

	now := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Reporting Portal//Due Dates//EN")
	cal.SetXWRCalName("Report due dates")

	for i := range reports {
		r := &reports[i]
		if r.Status != model.StatusPending {
			continue
		}

		name := "Report"
		lead := defaultDaysBeforeReminder
		if r.Template != nil {
			name = r.Template.Name
			if r.Template.DaysBeforeReminder >= 1 {
				lead = r.Template.DaysBeforeReminder
			}
		}

		event := cal.AddEvent(r.ReportID + "@reporting-portal")
		event.SetDtStampTime(now)
		event.SetModifiedAt(r.UpdatedAt.UTC())
		event.SetStartAt(r.DueDate.UTC())
		event.SetEndAt(r.DueDate.UTC().Add(30 * time.Minute))
		event.SetSummary(fmt.Sprintf("%s due: %s %s", name, r.CompanyCode, r.Period))
		event.SetDescription(fmt.Sprintf("%s must submit %q for %s.", r.CompanyName, name, r.Period))
		if s.baseURL != "" {
			event.SetURL(s.baseURL + "/reports/" + r.ReportID)
		}

		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-P%dD", lead))
	}

	return cal.Serialize(), nil
}
