package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// A quarterly template for three companies: A submits early, B late, C never.
func TestScenario_QuarterlyCycle(t *testing.T) {
	env := newTestEnv(date(2024, 3, 1))
	ctx := context.Background()

	for _, code := range []string{"A", "B", "C"} {
		env.addCompany(code, true)
		env.addUser("member-"+code, model.RoleMemberUnit, withCompany(code))
	}
	env.addUser("admin1", model.RoleAdmin)
	env.addUser("admin2", model.RoleAdmin)
	env.addUser("admin3", model.RoleAdmin)
	tpl := env.addTemplate("Financial-Q", []string{"A", "B", "C"}, 7)

	due := date(2024, 4, 15)
	created, err := env.periods.Create(ctx, adminCaller, &dto.CreatePeriodRequest{
		TemplateID: tpl.TemplateID, Period: "2024-Q1", DueDate: due,
	})
	require.NoError(t, err)
	require.Equal(t, 3, created.ReportsCount)

	byCode := map[string]string{}
	for _, r := range env.allReports() {
		require.Equal(t, model.StatusPending, r.Status)
		byCode[r.CompanyCode] = r.ReportID
	}

	member := func(code string) Caller {
		u, _ := env.m.users.GetByUsername(ctx, "member-"+code)
		return callerOf(u)
	}

	env.now = date(2024, 4, 10)
	a, err := env.reports.Submit(ctx, member("A"), byCode["A"], validForm)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, a.Status)
	assert.Empty(t, env.m.notifications.byType(model.NotificationLate))

	env.now = date(2024, 4, 20)
	b, err := env.reports.Submit(ctx, member("B"), byCode["B"], validForm)
	require.NoError(t, err)
	assert.Equal(t, model.StatusLate, b.Status)

	late := env.m.notifications.byType(model.NotificationLate)
	require.Len(t, late, 3)
	perAdmin := map[string]int{}
	for _, n := range late {
		perAdmin[n.UserID]++
	}
	for _, admin := range []string{"user-admin1", "user-admin2", "user-admin3"} {
		assert.Equal(t, 1, perAdmin[admin], admin)
	}

	c := env.stored(byCode["C"])
	assert.Equal(t, model.StatusPending, c.Status, "never transitions on its own")
	assert.Equal(t, model.StatusOverdue, EffectiveStatus(c, env.now))

	stats, err := env.dashboard.Stats(ctx, adminCaller, &dto.StatsRequest{Period: "2024-Q1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Selected.Total)
	assert.Equal(t, int64(1), stats.Selected.Submitted)
	assert.Equal(t, int64(1), stats.Selected.Late)
	assert.Equal(t, int64(1), stats.Selected.Overdue)
}
