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

func TestActivityAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes the lead's last activity date", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)
		stale := time.Now().AddDate(0, 0, -10).Format(domain.DateLayout)
		_, err := env.store.Handle().Exec(`UPDATE leads SET last_activity_date = ? WHERE id = 'l1'`, stale)
		require.NoError(t, err)

		activity, err := env.activity.Append(ctx, "l1", ActivityInput{
			Type:        "call",
			Description: "Discussed exchange bonus",
			PerformedBy: strPtr("Amit"),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ActivityCall, activity.Type)
		assert.Equal(t, "Amit", activity.PerformedBy)

		lead, err := env.leadSvc.Get(ctx, "l1")
		require.NoError(t, err)
		require.NotNil(t, lead.LastActivityDate)
		assert.Equal(t, time.Now().Format(domain.DateLayout), *lead.LastActivityDate)
	})

	t.Run("unknown lead is a not found", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.activity.Append(ctx, "ghost", ActivityInput{Type: "note", Description: "x"})
		requireDomainErrorCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)
		_, err := env.activity.Append(ctx, "l1", ActivityInput{Type: "telepathy", Description: "x"})
		requireDomainErrorCode(t, err, apperrors.CodeValidation)
	})

	t.Run("blank description rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)
		_, err := env.activity.Append(ctx, "l1", ActivityInput{Type: "note", Description: "   "})
		requireDomainErrorCode(t, err, apperrors.CodeValidation)
	})
}

func TestActivityListOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedLead(t, "l1", "Ravi", "+91 90000 00001", domain.StatusNew, nil)

	// Insert with spaced timestamps so ordering is observable.
	base := time.Now().Add(-time.Hour)
	for i, desc := range []string{"first", "second", "third"} {
		createdAt := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		_, err := env.store.Handle().Exec(
			`INSERT INTO activities (id, lead_id, type, description, performed_by, created_at) VALUES (?, 'l1', 'note', ?, 'User', ?)`,
			desc, desc, createdAt,
		)
		require.NoError(t, err)
	}

	activities, err := env.activity.ListForLead(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, "third", activities[0].Description)
	assert.Equal(t, "first", activities[2].Description)
}

func TestActivityListUnknownLeadIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	activities, err := env.activity.ListForLead(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, activities)
}
