package service

import (
	"context"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCalendarService_Feed(t *testing.T) {
	f := setupSubmit(t, dueQ1.Add(-time.Hour))
	_, err := f.env.reports.Submit(context.Background(), f.member, f.report.ReportID, validForm)
	require.NoError(t, err)

	svc := NewCalendarService(f.env.repo, f.env.policy, "https://portal.example.com/", zap.NewNop())
	feed, err := svc.Feed(context.Background(), adminCaller)
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(feed))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1, "only the pending report gets an event")
	ev := events[0]
	assert.Equal(t, f.other.ReportID+"@reporting-portal", ev.Id())

	start, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(dueQ1), "start = %v", start)

	assert.Contains(t, feed, "https://portal.example.com/reports/"+f.other.ReportID)
	assert.Contains(t, feed, "TRIGGER:-P7D")
}

func TestCalendarService_MemberFeedIsScoped(t *testing.T) {
	f := setupSubmit(t, dueQ1.Add(-time.Hour))
	svc := NewCalendarService(f.env.repo, f.env.policy, "", zap.NewNop())

	feed, err := svc.Feed(context.Background(), f.member)
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	assert.Equal(t, f.report.ReportID+"@reporting-portal", cal.Events()[0].Id())
	assert.NotContains(t, feed, "URL:")
}
