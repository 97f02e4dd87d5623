package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autopulse/crm-service/internal/config"
	"github.com/autopulse/crm-service/internal/domain"
	"github.com/autopulse/crm-service/internal/events"
	"github.com/autopulse/crm-service/internal/persistence"
	"github.com/autopulse/crm-service/internal/repository"
)

// testEnv wires the service stack over an in-memory database.
type testEnv struct {
	store      *persistence.SQLite
	leads      repository.LeadRepository
	users      repository.UserRepository
	activities repository.ActivityRepository
	assignment *AssignmentService
	leadSvc    *LeadService
	activity   *ActivityService
	pipeline   *PipelineService
	dashboard  *DashboardService
	dispatcher events.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store, err := persistence.NewSQLite(context.Background(), config.SQLiteConfig{Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, persistence.RunMigrations(context.Background(), store.Handle(), logger))

	db := store.Handle()
	leadRepo := repository.NewLeadRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	dispatcher := events.NewInMemoryDispatcher()

	assignment := NewAssignmentService(userRepo)
	leadSvc := NewLeadService(LeadDependencies{
		Store:      store,
		LeadRepo:   leadRepo,
		UserRepo:   userRepo,
		Assignment: assignment,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	activitySvc := NewActivityService(ActivityDependencies{
		Store:        store,
		LeadRepo:     leadRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	dashboard := NewDashboardService(DashboardDependencies{
		LeadRepo:     leadRepo,
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Dealership:   config.DealershipConfig{UnitRevenue: 1200000},
		Logger:       logger,
	})

	return &testEnv{
		store:      store,
		leads:      leadRepo,
		users:      userRepo,
		activities: activityRepo,
		assignment: assignment,
		leadSvc:    leadSvc,
		activity:   activitySvc,
		pipeline:   NewPipelineService(leadSvc),
		dashboard:  dashboard,
		dispatcher: dispatcher,
	}
}

// seedUser inserts a user with a created_at offset so ordering between
// users stays deterministic in tests.
func (e *testEnv) seedUser(t *testing.T, id, name string, role domain.Role, createdOffset time.Duration) {
	t.Helper()
	createdAt := time.Now().Add(createdOffset).Format(time.RFC3339)
	_, err := e.store.Handle().Exec(
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, '', ?, ?)`,
		id, name, id+"@dealer.test", role, createdAt,
	)
	require.NoError(t, err)
}

// seedLead inserts a lead directly, bypassing the service layer.
func (e *testEnv) seedLead(t *testing.T, id, name, phone string, status domain.LeadStatus, assignedTo *string) {
	t.Helper()
	now := time.Now().Format(time.RFC3339)
	today := time.Now().Format(domain.DateLayout)
	_, err := e.store.Handle().Exec(
		`INSERT INTO leads (id, name, phone, email, source, status, assigned_to, score, last_activity_date, created_at, updated_at)
		 VALUES (?, ?, ?, NULL, 'Website', ?, ?, 'warm', ?, ?, ?)`,
		id, name, phone, status, assignedTo, today, now, now,
	)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }
