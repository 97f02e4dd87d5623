package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopulse/crm-service/internal/domain"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

func TestLeadCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing required fields rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.leadSvc.Create(ctx, LeadCreateInput{Name: "Ravi", Source: "Website"})
		requireDomainErrorCode(t, err, apperrors.CodeValidation)
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.leadSvc.Create(ctx, LeadCreateInput{Name: "Ravi", Phone: "+91 90000 00001", Source: "Carrier Pigeon"})
		requireDomainErrorCode(t, err, apperrors.CodeValidation)
	})

	t.Run("auto-assigns least loaded sales user and logs intake", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)
		env.seedUser(t, "s2", "Priya", domain.RoleSales, time.Second)
		env.seedLead(t, "busy", "Busy", "+91 90000 00099", domain.StatusNew, strPtr("s1"))

		result, err := env.leadSvc.Create(ctx, LeadCreateInput{
			Name:   "Ravi Kumar",
			Phone:  "+91 90000 00001",
			Source: "Website",
		})
		require.NoError(t, err)
		assert.True(t, result.AutoAssigned)
		require.NotNil(t, result.Lead.AssignedTo)
		assert.Equal(t, "s2", *result.Lead.AssignedTo)
		assert.Equal(t, domain.StatusNew, result.Lead.Status)
		require.NotNil(t, result.Lead.LastActivityDate)
		assert.Equal(t, time.Now().Format(domain.DateLayout), *result.Lead.LastActivityDate)

		activities, err := env.activity.ListForLead(ctx, result.Lead.ID)
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, domain.ActivitySystem, activities[0].Type)
		assert.Equal(t, domain.SystemPerformer, activities[0].PerformedBy)
		assert.Contains(t, activities[0].Description, "Priya")
	})

	t.Run("no sales users leaves the lead unassigned", func(t *testing.T) {
		env := newTestEnv(t)
		result, err := env.leadSvc.Create(ctx, LeadCreateInput{
			Name:   "Ravi Kumar",
			Phone:  "+91 90000 00001",
			Source: "Referral",
		})
		require.NoError(t, err)
		assert.True(t, result.AutoAssigned)
		assert.Nil(t, result.Lead.AssignedTo)
	})

	t.Run("explicit assignee skips auto-assignment", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)
		result, err := env.leadSvc.Create(ctx, LeadCreateInput{
			Name:       "Ravi Kumar",
			Phone:      "+91 90000 00001",
			Source:     "Website",
			AssignedTo: strPtr("s1"),
		})
		require.NoError(t, err)
		assert.False(t, result.AutoAssigned)
		require.NotNil(t, result.Lead.AssignedTo)
		assert.Equal(t, "s1", *result.Lead.AssignedTo)
	})

	t.Run("duplicate phone conflicts with existing lead attached", func(t *testing.T) {
		env := newTestEnv(t)
		first, err := env.leadSvc.Create(ctx, LeadCreateInput{
			Name:   "Ravi Kumar",
			Phone:  "+91 90000 00001",
			Source: "Website",
		})
		require.NoError(t, err)

		// Same digits, different whitespace.
		_, err = env.leadSvc.Create(ctx, LeadCreateInput{
			Name:   "Someone Else",
			Phone:  "+9190000 00001",
			Source: "Facebook",
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, apperrors.CodeConflict, domainErr.Code)
		existing, ok := domainErr.Details["existing"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, first.Lead.ID, existing["id"])

		// The rejected create must not leave a row behind.
		leads, err := env.leadSvc.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Len(t, leads, 1)
	})

	t.Run("accepts board alias status on intake", func(t *testing.T) {
		env := newTestEnv(t)
		result, err := env.leadSvc.Create(ctx, LeadCreateInput{
			Name:   "Walk In",
			Phone:  "+91 90000 00002",
			Source: "Offline",
			Status: strPtr("Closed Won"),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConverted, result.Lead.Status)
	})
}

func TestLeadUpdateStatusTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("status change appends one activity and refreshes recency", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)
		// Age the activity date so we can observe the refresh.
		stale := time.Now().AddDate(0, 0, -5).Format(domain.DateLayout)
		_, err := env.store.Handle().Exec(`UPDATE leads SET last_activity_date = ? WHERE id = 'l1'`, stale)
		require.NoError(t, err)

		updated, err := env.leadSvc.Update(ctx, "l1", LeadUpdateInput{
			Status:    strPtr("Contacted"),
			UpdatedBy: strPtr("Amit"),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusContacted, updated.Status)
		require.NotNil(t, updated.LastActivityDate)
		assert.Equal(t, time.Now().Format(domain.DateLayout), *updated.LastActivityDate)

		activities, err := env.activity.ListForLead(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, domain.ActivityStatus, activities[0].Type)
		assert.Contains(t, activities[0].Description, "New")
		assert.Contains(t, activities[0].Description, "Contacted")
		assert.Equal(t, "Amit", activities[0].PerformedBy)
	})

	t.Run("same-status update records nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusContacted, nil)

		_, err := env.leadSvc.Update(ctx, "l1", LeadUpdateInput{
			Status: strPtr("Contacted"),
			Budget: strPtr("8-10 Lakh"),
		})
		require.NoError(t, err)

		activities, err := env.activity.ListForLead(ctx, "l1")
		require.NoError(t, err)
		assert.Empty(t, activities)
	})

	t.Run("board alias transitions to the stored vocabulary", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNegotiation, nil)

		updated, err := env.leadSvc.Update(ctx, "l1", LeadUpdateInput{Status: strPtr("Closed Lost")})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNotInterested, updated.Status)

		activities, err := env.activity.ListForLead(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Contains(t, activities[0].Description, "Not Interested")
	})

	t.Run("missing performer falls back to default", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)

		_, err := env.leadSvc.Update(ctx, "l1", LeadUpdateInput{Status: strPtr("Qualified")})
		require.NoError(t, err)

		activities, err := env.activity.ListForLead(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, domain.DefaultPerformer, activities[0].PerformedBy)
	})

	t.Run("unknown lead is a not found", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.leadSvc.Update(ctx, "nope", LeadUpdateInput{Status: strPtr("Contacted")})
		requireDomainErrorCode(t, err, apperrors.CodeNotFound)
	})
}

func TestLeadConvert(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNegotiation, nil)

	first, err := env.leadSvc.Convert(ctx, "l1", strPtr("Amit"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, first.Status)

	// Converting again is not rejected and appends another entry.
	second, err := env.leadSvc.Convert(ctx, "l1", strPtr("Amit"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, second.Status)

	activities, err := env.activity.ListForLead(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, activities, 2)
	for _, activity := range activities {
		assert.Equal(t, "Lead converted to Sale!", activity.Description)
	}
}

func TestLeadDeleteCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)

	_, err := env.activity.Append(ctx, "l1", ActivityInput{Type: "call", Description: "Discussed pricing"})
	require.NoError(t, err)
	_, err = env.activity.Append(ctx, "l1", ActivityInput{Type: "note", Description: "Prefers diesel variant"})
	require.NoError(t, err)

	require.NoError(t, env.leadSvc.Delete(ctx, "l1"))

	_, err = env.leadSvc.Get(ctx, "l1")
	requireDomainErrorCode(t, err, apperrors.CodeNotFound)

	activities, err := env.activity.ListForLead(ctx, "l1")
	require.NoError(t, err)
	assert.Empty(t, activities)

	err = env.leadSvc.Delete(ctx, "l1")
	requireDomainErrorCode(t, err, apperrors.CodeNotFound)
}

func TestLeadListAndSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("summary zero-fills every status", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)
		env.seedLead(t, "l2", "Sneha", "+91 90000 00002", domain.StatusConverted, nil)

		summary, err := env.leadSvc.Summary(ctx)
		require.NoError(t, err)
		require.Len(t, summary, len(domain.AllStatuses()))
		assert.Equal(t, 1, summary["New"])
		assert.Equal(t, 1, summary["Converted"])
		assert.Equal(t, 0, summary["Negotiation"])
		assert.Equal(t, 0, summary["Not Interested"])
	})

	t.Run("status filter accepts the board alias", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusConverted, nil)
		env.seedLead(t, "l2", "Sneha", "+91 90000 00002", domain.StatusNew, nil)

		leads, err := env.leadSvc.List(ctx, ListFilter{Status: strPtr("Closed Won")})
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, "l1", leads[0].ID)
	})

	t.Run("hot sort orders by temperature", func(t *testing.T) {
		env := newTestEnv(t)
		for i, tc := range []struct {
			status  domain.LeadStatus
			daysAgo int
		}{
			{domain.StatusNew, 10},      // cold
			{domain.StatusQualified, 0}, // hot
			{domain.StatusContacted, 2}, // warm
		} {
			id := fmt.Sprintf("l%d", i+1)
			env.seedLead(t, id, "Lead "+id, fmt.Sprintf("+91 90000 0000%d", i+1), tc.status, nil)
			stale := time.Now().AddDate(0, 0, -tc.daysAgo).Format(domain.DateLayout)
			_, err := env.store.Handle().Exec(`UPDATE leads SET last_activity_date = ? WHERE id = ?`, stale, id)
			require.NoError(t, err)
		}

		leads, err := env.leadSvc.List(ctx, ListFilter{Sort: "hot"})
		require.NoError(t, err)
		require.Len(t, leads, 3)
		assert.Equal(t, domain.ScoreHot, leads[0].ComputedScore)
		assert.Equal(t, domain.ScoreWarm, leads[1].ComputedScore)
		assert.Equal(t, domain.ScoreCold, leads[2].ComputedScore)
	})

	t.Run("check duplicate returns nil for a fresh phone", func(t *testing.T) {
		env := newTestEnv(t)
		match, err := env.leadSvc.CheckDuplicate(ctx, "+91 90000 00001")
		require.NoError(t, err)
		assert.Nil(t, match)
	})
}

func requireDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}
