package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopulse/crm-service/internal/domain"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

func TestSalesDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user is a not found", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.dashboard.Sales(ctx, "ghost")
		requireDomainErrorCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("distributions zero-fill every label", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)
		env.seedLead(t, "l1", "A", "+91 90000 00001", domain.StatusNew, strPtr("s1"))

		dashboard, err := env.dashboard.Sales(ctx, "s1")
		require.NoError(t, err)

		require.Len(t, dashboard.StatusDistribution, len(domain.AllStatuses()))
		assert.Equal(t, 1, dashboard.StatusDistribution["New"])
		assert.Equal(t, 0, dashboard.StatusDistribution["Negotiation"])

		require.Len(t, dashboard.SourceDistribution, len(domain.AllSources()))
		assert.Equal(t, 1, dashboard.SourceDistribution["Website"])
		assert.Equal(t, 0, dashboard.SourceDistribution["Twitter"])

		assert.Len(t, dashboard.WeeklyActivity, 7)
	})

	t.Run("kpis count only the caller's leads", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)
		env.seedUser(t, "s2", "Priya", domain.RoleSales, time.Second)
		env.seedLead(t, "l1", "A", "+91 90000 00001", domain.StatusConverted, strPtr("s1"))
		env.seedLead(t, "l2", "B", "+91 90000 00002", domain.StatusNew, strPtr("s1"))
		env.seedLead(t, "l3", "C", "+91 90000 00003", domain.StatusNew, strPtr("s1"))
		env.seedLead(t, "l4", "D", "+91 90000 00004", domain.StatusNew, strPtr("s2"))

		dashboard, err := env.dashboard.Sales(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 3, dashboard.KPI.AssignedLeads)
		assert.Equal(t, 33, dashboard.KPI.ConversionRate)
		assert.Equal(t, 1, dashboard.KPI.ConvertedThisMonth)
	})

	t.Run("overdue and inactive lists populate", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)
		env.seedLead(t, "l1", "Overdue", "+91 90000 00001", domain.StatusContacted, strPtr("s1"))
		env.seedLead(t, "l2", "Dormant", "+91 90000 00002", domain.StatusQualified, strPtr("s1"))

		yesterday := time.Now().AddDate(0, 0, -1).Format(domain.DateLayout)
		_, err := env.store.Handle().Exec(`UPDATE leads SET follow_up_date = ? WHERE id = 'l1'`, yesterday)
		require.NoError(t, err)
		longAgo := time.Now().AddDate(0, 0, -10).Format(domain.DateLayout)
		_, err = env.store.Handle().Exec(`UPDATE leads SET last_activity_date = ? WHERE id = 'l2'`, longAgo)
		require.NoError(t, err)

		dashboard, err := env.dashboard.Sales(ctx, "s1")
		require.NoError(t, err)

		require.Len(t, dashboard.Overdue, 1)
		assert.Equal(t, "l1", dashboard.Overdue[0].ID)
		require.Len(t, dashboard.Inactive, 1)
		assert.Equal(t, "l2", dashboard.Inactive[0].ID)
	})
}

func TestManagerDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("empty dealership computes safely", func(t *testing.T) {
		env := newTestEnv(t)
		dashboard, err := env.dashboard.Manager(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, dashboard.KPI.TotalLeads)
		assert.Equal(t, 0, dashboard.KPI.ConversionRate)
		assert.Equal(t, int64(0), dashboard.KPI.RevenueGenerated)
		assert.Nil(t, dashboard.KPI.TopPerformer)
		assert.Len(t, dashboard.MonthlyTrend.Months, 6)
	})

	t.Run("revenue and top performer", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)
		env.seedUser(t, "s2", "Priya", domain.RoleSales, time.Second)
		env.seedLead(t, "l1", "A", "+91 90000 00001", domain.StatusConverted, strPtr("s1"))
		env.seedLead(t, "l2", "B", "+91 90000 00002", domain.StatusConverted, strPtr("s2"))
		env.seedLead(t, "l3", "C", "+91 90000 00003", domain.StatusConverted, strPtr("s2"))
		env.seedLead(t, "l4", "D", "+91 90000 00004", domain.StatusNew, strPtr("s1"))

		dashboard, err := env.dashboard.Manager(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3*1200000), dashboard.KPI.RevenueGenerated)
		assert.Equal(t, 75, dashboard.KPI.ConversionRate)
		require.NotNil(t, dashboard.KPI.TopPerformer)
		assert.Equal(t, "Priya", dashboard.KPI.TopPerformer.Name)
		require.Len(t, dashboard.ExecPerformance, 2)
	})

	t.Run("trend labels are month abbreviations", func(t *testing.T) {
		env := newTestEnv(t)
		dashboard, err := env.dashboard.Manager(ctx)
		require.NoError(t, err)
		require.Len(t, dashboard.MonthlyTrend.Months, 6)
		assert.Equal(t, time.Now().Month().String()[:3], dashboard.MonthlyTrend.Months[5])
		for _, label := range dashboard.MonthlyTrend.Months {
			assert.Len(t, label, 3)
		}
	})
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, percentage(1, 0))
	assert.Equal(t, 0, percentage(0, 10))
	assert.Equal(t, 33, percentage(1, 3))
	assert.Equal(t, 67, percentage(2, 3))
	assert.Equal(t, 100, percentage(3, 3))
}
