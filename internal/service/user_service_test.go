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

func TestUserList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userSvc := NewUserService(env.users, env.leads)

	env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)
	env.seedUser(t, "mgr", "Rajesh", domain.RoleManager, time.Second)
	env.seedLead(t, "l1", "A", "+91 90000 00001", domain.StatusNew, strPtr("s1"))
	env.seedLead(t, "l2", "B", "+91 90000 00002", domain.StatusConverted, strPtr("s1"))
	env.seedLead(t, "l3", "C", "+91 90000 00003", domain.StatusNotInterested, strPtr("s1"))

	t.Run("counts split active from closed", func(t *testing.T) {
		role := "sales"
		users, err := userSvc.List(ctx, &role)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, 3, users[0].TotalLeads)
		assert.Equal(t, 1, users[0].Converted)
		assert.Equal(t, 1, users[0].ActiveLeads)
	})

	t.Run("no filter returns everyone", func(t *testing.T) {
		users, err := userSvc.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		role := "janitor"
		_, err := userSvc.List(ctx, &role)
		requireDomainErrorCode(t, err, apperrors.CodeValidation)
	})
}

func TestUserGet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userSvc := NewUserService(env.users, env.leads)
	env.seedUser(t, "s1", "Amit", domain.RoleSales, 0)

	user, err := userSvc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Amit", user.Name)

	_, err = userSvc.Get(ctx, "ghost")
	requireDomainErrorCode(t, err, apperrors.CodeNotFound)
}
