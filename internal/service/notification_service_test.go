package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

func TestNotificationService_SendReminders_PerTemplateWindow(t *testing.T) {
	now := date(2024, 4, 1)
	env := newTestEnv(now)
	a := env.addCompany("A", true)
	b := env.addCompany("B", true)

	weekly := env.addTemplate("Weekly-lead", []string{"A", "B"}, 7)
	monthly := env.addTemplate("Monthly-lead", []string{"A", "B"}, 30)

	env.addUser("a1", model.RoleMemberUnit, withCompany("A"))
	env.addUser("a2", model.RoleMemberUnit, withCompany("A"))
	env.addUser("a3", model.RoleMemberUnit, withCompany("A"), inactive)
	env.addUser("b1", model.RoleMemberUnit, withCompany("B"))

	inWeek := env.addReport(weekly, a, "2024-Q1", now.Add(5*24*time.Hour))
	env.addReport(weekly, b, "2024-Q1", now.Add(20*24*time.Hour)) // outside 7 days
	inMonth := env.addReport(monthly, b, "2024-Q1", now.Add(20*24*time.Hour))
	env.addReport(monthly, a, "2024-Q2", now.Add(-time.Hour)) // already past due

	res, err := env.notif.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Reports)
	assert.Equal(t, 3, res.Notifications) // a1, a2 for inWeek; b1 for inMonth
	assert.Equal(t, 3, res.EmailsSent)
	assert.Equal(t, 0, res.EmailsFailed)

	got := map[string]string{}
	for _, n := range env.m.notifications.byType(model.NotificationReminder) {
		got[n.UserID] = *n.ReportID
	}
	assert.Equal(t, map[string]string{
		"user-a1": inWeek.ReportID,
		"user-a2": inWeek.ReportID,
		"user-b1": inMonth.ReportID,
	}, got)
}

func TestNotificationService_SendReminders_Dedupe(t *testing.T) {
	now := date(2024, 4, 1)
	env := newTestEnv(now)
	a := env.addCompany("A", true)
	tpl := env.addTemplate("Financial-Q", []string{"A"}, 7)
	env.addUser("a1", model.RoleMemberUnit, withCompany("A"))
	env.addReport(tpl, a, "2024-Q1", now.Add(3*24*time.Hour))

	first, err := env.notif.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Notifications)

	env.now = now.Add(time.Hour)
	second, err := env.notif.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Notifications)
	assert.Equal(t, 1, second.Skipped)

	env.now = now.Add(25 * time.Hour)
	third, err := env.notif.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, third.Notifications)
}

func TestNotificationService_SendReminders_EmailFailureKeepsRows(t *testing.T) {
	now := date(2024, 4, 1)
	env := newTestEnv(now)
	a := env.addCompany("A", true)
	tpl := env.addTemplate("Financial-Q", []string{"A"}, 7)
	env.addUser("a1", model.RoleMemberUnit, withCompany("A"))
	env.addReport(tpl, a, "2024-Q1", now.Add(24*time.Hour))
	env.mailer.fail = true

	res, err := env.notif.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notifications)
	assert.Equal(t, 1, res.EmailsFailed)
	assert.Len(t, env.m.notifications.byType(model.NotificationReminder), 1)
}

func TestNotificationService_SendReminders_Nothing(t *testing.T) {
	env := newTestEnv(date(2024, 4, 1))
	res, err := env.notif.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.ReminderResult{}, *res)
}

func TestInReminderWindow(t *testing.T) {
	now := date(2024, 4, 1)
	tpl := &model.ReportTemplate{DaysBeforeReminder: 3}
	r := &model.Report{Status: model.StatusPending, Template: tpl}

	r.DueDate = now.Add(3 * 24 * time.Hour)
	assert.True(t, InReminderWindow(r, now), "edge of window")
	r.DueDate = now.Add(3*24*time.Hour + time.Second)
	assert.False(t, InReminderWindow(r, now))
	r.DueDate = now
	assert.False(t, InReminderWindow(r, now), "due now is not upcoming")

	r.Template = nil
	r.DueDate = now.Add(6 * 24 * time.Hour)
	assert.True(t, InReminderWindow(r, now), "default window")

	r.Status = model.StatusSubmitted
	assert.False(t, InReminderWindow(r, now))
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	env := newTestEnv(date(2024, 4, 1))
	ctx := context.Background()
	require.NoError(t, env.m.notifications.Create(ctx, &model.Notification{
		NotificationID: "n1", UserID: "user-a", Title: "t", Message: "m", Type: model.NotificationReminder,
	}))

	err := env.notif.MarkAsRead(ctx, "user-b", "n1")
	assert.True(t, errors.Is(err, ErrAccessDenied))

	require.NoError(t, env.notif.MarkAsRead(ctx, "user-a", "n1"))
	n, _ := env.m.notifications.GetByID(ctx, "n1")
	assert.True(t, n.IsRead)

	// idempotent
	require.NoError(t, env.notif.MarkAsRead(ctx, "user-a", "n1"))

	assert.True(t, errors.Is(env.notif.MarkAsRead(ctx, "user-a", "missing"), ErrNotificationNotFound))

	count, err := env.notif.UnreadCount(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNotificationService_List(t *testing.T) {
	env := newTestEnv(date(2024, 4, 1))
	ctx := context.Background()
	for i, read := range []bool{false, true, false} {
		_ = env.m.notifications.Create(ctx, &model.Notification{
			UserID: "user-a", Title: "t", Type: model.NotificationReminder, IsRead: read,
			CreatedAt: date(2024, 4, i+1),
		})
	}
	_ = env.m.notifications.Create(ctx, &model.Notification{UserID: "user-b", Type: model.NotificationLate})

	all, err := env.notif.List(ctx, "user-a", &dto.NotificationListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	unread, err := env.notif.List(ctx, "user-a", &dto.NotificationListRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.Total)

	empty, err := env.notif.List(ctx, "user-z", &dto.NotificationListRequest{})
	require.NoError(t, err)
	assert.NotNil(t, empty.List)
}
