package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
)

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, dto.StatusBreakdown{}, stats.Overall)
	assert.Equal(t, 0, stats.Overall.SubmittedPercent)
	assert.NotNil(t, stats.Periods)
}

func TestComputeStats_Percentages(t *testing.T) {
	stats := ComputeStats([]repository.StatusCount{
		{Period: "2024-Q1", EffectiveStatus: model.StatusSubmitted, Count: 1},
		{Period: "2024-Q1", EffectiveStatus: model.StatusLate, Count: 1},
		{Period: "2024-Q1", EffectiveStatus: model.StatusOverdue, Count: 1},
		{Period: "2024-Q2", EffectiveStatus: model.StatusPending, Count: 3},
	})

	require.Len(t, stats.Periods, 2)
	q1 := stats.Periods[0]
	assert.Equal(t, "2024-Q1", q1.Period)
	assert.Equal(t, int64(3), q1.Total)
	assert.Equal(t, 33, q1.SubmittedPercent)
	assert.Equal(t, 33, q1.LatePercent)
	assert.Equal(t, int64(1), q1.Pending, "overdue counts as pending")
	assert.Equal(t, int64(1), q1.Overdue)
	assert.Equal(t, 67, q1.CompletionPercent)

	assert.Equal(t, int64(6), stats.Overall.Total)
	assert.Equal(t, int64(4), stats.Overall.Pending)
	assert.Equal(t, 67, stats.Overall.PendingPercent)
	assert.Equal(t, 17, stats.Overall.SubmittedPercent)
}

func TestDashboardService_Stats(t *testing.T) {
	f := setupSubmit(t, dueQ1.Add(-time.Hour))
	ctx := context.Background()
	_, err := f.env.reports.Submit(ctx, f.member, f.report.ReportID, validForm)
	require.NoError(t, err)

	f.env.now = dueQ1.Add(time.Hour)

	all, err := f.env.dashboard.Stats(ctx, adminCaller, &dto.StatsRequest{Period: "2024-Q1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Overall.Total)
	assert.Equal(t, 50, all.Overall.SubmittedPercent)
	assert.Equal(t, int64(1), all.Overall.Overdue)
	require.NotNil(t, all.Selected)
	assert.Equal(t, int64(2), all.Selected.Total)

	mine, err := f.env.dashboard.Stats(ctx, f.member, &dto.StatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Overall.Total)
	assert.Equal(t, 100, mine.Overall.SubmittedPercent)
	assert.Nil(t, mine.Selected)

	unknown, err := f.env.dashboard.Stats(ctx, adminCaller, &dto.StatsRequest{Period: "1999-Q1"})
	require.NoError(t, err)
	require.NotNil(t, unknown.Selected)
	assert.Equal(t, int64(0), unknown.Selected.Total)
	assert.Equal(t, 0, unknown.Selected.SubmittedPercent)
}
