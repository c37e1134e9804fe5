package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
)

// DashboardService read-only aggregation over reports.
type DashboardService interface {
	Stats(ctx context.Context, caller Caller, req *dto.StatsRequest) (*dto.StatsResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	policy *accessPolicy
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(repo *repository.Repository, policy *accessPolicy, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, policy: policy, logger: logger, now: time.Now}
}

// ────────────────────── Stats ──────────────────────

// Stats counts visible reports by effective status, overall and per period.
// Member units only see their own company.
func (s *dashboardService) Stats(ctx context.Context, caller Caller, req *dto.StatsRequest) (*dto.StatsResponse, error) {
	scope, err := s.policy.reportScope(ctx, caller)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Report.CountByStatus(ctx, repository.ReportFilter{
		CompanyID: scope.CompanyID,
		Now:       s.now(),
	})
	if err != nil {
		s.logger.Error("count reports failed", zap.Error(err))
		return nil, err
	}

	resp := ComputeStats(counts)
	if req.Period != "" {
		selected := dto.PeriodStats{Period: req.Period}
		for _, p := range resp.Periods {
			if p.Period == req.Period {
				selected = p
				break
			}
		}
		resp.Selected = &selected
	}
	return resp, nil
}

// ComputeStats folds grouped counts into breakdowns. Periods keep the order
// of counts.
func ComputeStats(counts []repository.StatusCount) *dto.StatsResponse {
	resp := &dto.StatsResponse{Periods: []dto.PeriodStats{}}
	index := make(map[string]int)

	for _, c := range counts {
		addCount(&resp.Overall, c.EffectiveStatus, c.Count)

		i, ok := index[c.Period]
		if !ok {
			i = len(resp.Periods)
			index[c.Period] = i
			resp.Periods = append(resp.Periods, dto.PeriodStats{Period: c.Period})
		}
		addCount(&resp.Periods[i].StatusBreakdown, c.EffectiveStatus, c.Count)
	}

	fillPercents(&resp.Overall)
	for i := range resp.Periods {
		fillPercents(&resp.Periods[i].StatusBreakdown)
	}
	return resp
}

func addCount(b *dto.StatusBreakdown, status string, n int64) {
	b.Total += n
	switch status {
	case model.StatusSubmitted:
		b.Submitted += n
	case model.StatusLate:
		b.Late += n
	case model.StatusOverdue:
		b.Overdue += n
		b.Pending += n
	default:
		b.Pending += n
	}
}

func fillPercents(b *dto.StatusBreakdown) {
	b.SubmittedPercent = percent(b.Submitted, b.Total)
	b.LatePercent = percent(b.Late, b.Total)
	b.PendingPercent = percent(b.Pending, b.Total)
	b.OverduePercent = percent(b.Overdue, b.Total)
	b.CompletionPercent = percent(b.Submitted+b.Late, b.Total)
}
