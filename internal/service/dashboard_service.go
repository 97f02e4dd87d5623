package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/autopulse/crm-service/internal/config"
	"github.com/autopulse/crm-service/internal/domain"
	"github.com/autopulse/crm-service/internal/events"
	"github.com/autopulse/crm-service/internal/persistence"
	"github.com/autopulse/crm-service/internal/repository"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// LeadDigest is the compact lead shape embedded in dashboard payloads.
type LeadDigest struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	Status            string  `json:"status"`
	VehicleInterested *string `json:"vehicle_interested"`
	AssignedName      *string `json:"assigned_name"`
	FollowUpDate      *string `json:"follow_up_date"`
	LastActivityDate  *string `json:"last_activity_date"`
}

// SalesKPI holds the sales executive headline numbers.
type SalesKPI struct {
	AssignedLeads      int `json:"assignedLeads"`
	ConversionRate     int `json:"conversionRate"`
	PendingFollowups   int `json:"pendingFollowups"`
	ConvertedThisMonth int `json:"convertedThisMonth"`
}

// SalesDashboard is the role-scoped payload for one sales user.
type SalesDashboard struct {
	KPI                SalesKPI       `json:"kpi"`
	StatusDistribution map[string]int `json:"statusDistribution"`
	SourceDistribution map[string]int `json:"sourceDistribution"`
	WeeklyActivity     []int          `json:"weeklyActivity"`
	Overdue            []LeadDigest   `json:"overdue"`
	Inactive           []LeadDigest   `json:"inactive"`
}

// ExecPerformance summarizes one sales user for the manager view.
type ExecPerformance struct {
	Name      string `json:"name"`
	Assigned  int    `json:"assigned"`
	Converted int    `json:"converted"`
}

// ManagerKPI holds the dealership-wide headline numbers.
type ManagerKPI struct {
	TotalLeads       int              `json:"totalLeads"`
	ConversionRate   int              `json:"conversionRate"`
	RevenueGenerated int64            `json:"revenueGenerated"`
	TopPerformer     *ExecPerformance `json:"topPerformer"`
}

// MonthlyTrend is a six-month trailing series of created and converted
// lead counts, oldest month first.
type MonthlyTrend struct {
	Months      []string `json:"months"`
	Leads       []int    `json:"leads"`
	Conversions []int    `json:"conversions"`
}

// ManagerDashboard is the dealership-wide payload.
type ManagerDashboard struct {
	KPI                ManagerKPI        `json:"kpi"`
	SourceDistribution map[string]int    `json:"sourceDistribution"`
	MonthlyTrend       MonthlyTrend      `json:"monthlyTrend"`
	StatusDistribution map[string]int    `json:"statusDistribution"`
	ExecPerformance    []ExecPerformance `json:"execPerformance"`
}

// DashboardService computes role-scoped KPI payloads, caching them in
// Redis for a short window.
type DashboardService struct {
	leads      repository.LeadRepository
	users      repository.UserRepository
	activities repository.ActivityRepository
	cache      *persistence.Redis
	cacheTTL   time.Duration
	dealership config.DealershipConfig
	logger     *zap.Logger
}

// DashboardDependencies bundles collaborators.
type DashboardDependencies struct {
	LeadRepo     repository.LeadRepository
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Cache        *persistence.Redis
	CacheTTL     time.Duration
	Dealership   config.DealershipConfig
	Logger       *zap.Logger
}

// NewDashboardService creates the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	return &DashboardService{
		leads:      deps.LeadRepo,
		users:      deps.UserRepo,
		activities: deps.ActivityRepo,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		dealership: deps.Dealership,
		logger:     deps.Logger,
	}
}

const (
	managerCacheKey    = "dashboard:manager"
	salesCacheKeyBase  = "dashboard:sales:"
	monthLayout        = "2006-01"
	weeklySeriesPoints = 7
	trendMonths        = 6
)

// RegisterInvalidation drops cached payloads whenever a lead or activity
// mutation is published.
func (s *DashboardService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, event events.Event) error {
		s.invalidate(ctx, assignedToFromPayload(event.Payload))
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventLeadCreated,
		events.EventLeadAssigned,
		events.EventLeadStatusChanged,
		events.EventLeadConverted,
		events.EventLeadDeleted,
		events.EventActivityLogged,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}

// Sales computes the dashboard for one sales user.
func (s *DashboardService) Sales(ctx context.Context, userID string) (*SalesDashboard, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	cacheKey := salesCacheKeyBase + userID
	var cached SalesDashboard
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	now := time.Now()
	today := now.Format(domain.DateLayout)
	month := now.Format(monthLayout)

	assigned, err := s.leads.CountAssigned(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	converted, err := s.leads.CountConverted(ctx, &userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	pending, err := s.leads.CountPendingFollowups(ctx, userID, today)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	convertedThisMonth, err := s.leads.CountConvertedInMonth(ctx, month, &userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	statusDist, err := s.statusDistribution(ctx, &userID)
	if err != nil {
		return nil, err
	}
	sourceDist, err := s.sourceDistribution(ctx, &userID)
	if err != nil {
		return nil, err
	}

	weekly := make([]int, 0, weeklySeriesPoints)
	for i := weeklySeriesPoints - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(domain.DateLayout)
		count, err := s.activities.CountOnDateForAssignee(ctx, userID, date)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		weekly = append(weekly, count)
	}

	overdueLeads, err := s.leads.ListOverdue(ctx, userID, today)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	activityCutoff := now.AddDate(0, 0, -agingThresholdDays).Format(domain.DateLayout)
	inactiveLeads, err := s.leads.ListInactive(ctx, userID, activityCutoff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	dashboard := &SalesDashboard{
		KPI: SalesKPI{
			AssignedLeads:      assigned,
			ConversionRate:     percentage(converted, assigned),
			PendingFollowups:   pending,
			ConvertedThisMonth: convertedThisMonth,
		},
		StatusDistribution: statusDist,
		SourceDistribution: sourceDist,
		WeeklyActivity:     weekly,
		Overdue:            digests(overdueLeads),
		Inactive:           digests(inactiveLeads),
	}

	s.cacheSet(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// Manager computes the dealership-wide dashboard.
func (s *DashboardService) Manager(ctx context.Context) (*ManagerDashboard, error) {
	var cached ManagerDashboard
	if s.cacheGet(ctx, managerCacheKey, &cached) {
		return &cached, nil
	}

	now := time.Now()
	month := now.Format(monthLayout)

	leadsThisMonth, err := s.leads.CountCreatedInMonth(ctx, month)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	allLeads, err := s.leads.CountAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	totalConverted, err := s.leads.CountConverted(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	sourceDist, err := s.sourceDistribution(ctx, nil)
	if err != nil {
		return nil, err
	}
	statusDist, err := s.statusDistribution(ctx, nil)
	if err != nil {
		return nil, err
	}

	trend := MonthlyTrend{
		Months:      make([]string, 0, trendMonths),
		Leads:       make([]int, 0, trendMonths),
		Conversions: make([]int, 0, trendMonths),
	}
	for i := trendMonths - 1; i >= 0; i-- {
		at := now.AddDate(0, -i, 0)
		key := at.Format(monthLayout)
		created, err := s.leads.CountCreatedInMonth(ctx, key)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		convertedInMonth, err := s.leads.CountConvertedInMonth(ctx, key, nil)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		trend.Months = append(trend.Months, at.Month().String()[:3])
		trend.Leads = append(trend.Leads, created)
		trend.Conversions = append(trend.Conversions, convertedInMonth)
	}

	salesRole := domain.RoleSales
	salesUsers, err := s.users.List(ctx, &salesRole)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	performance := make([]ExecPerformance, 0, len(salesUsers))
	var top *ExecPerformance
	for _, user := range salesUsers {
		assigned, err := s.leads.CountAssigned(ctx, user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		converted, err := s.leads.CountConverted(ctx, &user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		performance = append(performance, ExecPerformance{Name: user.Name, Assigned: assigned, Converted: converted})
		if top == nil || converted > top.Converted {
			entry := performance[len(performance)-1]
			top = &entry
		}
	}

	dashboard := &ManagerDashboard{
		KPI: ManagerKPI{
			TotalLeads:       leadsThisMonth,
			ConversionRate:   percentage(totalConverted, allLeads),
			RevenueGenerated: int64(totalConverted) * s.dealership.UnitRevenue,
			TopPerformer:     top,
		},
		SourceDistribution: sourceDist,
		MonthlyTrend:       trend,
		StatusDistribution: statusDist,
		ExecPerformance:    performance,
	}

	s.cacheSet(ctx, managerCacheKey, dashboard)
	return dashboard, nil
}

// statusDistribution iterates the full status enumeration so absent
// statuses report zero rather than a missing key.
func (s *DashboardService) statusDistribution(ctx context.Context, assignedTo *string) (map[string]int, error) {
	dist := make(map[string]int, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		count, err := s.leads.CountByStatus(ctx, status, assignedTo)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		dist[string(status)] = count
	}
	return dist, nil
}

func (s *DashboardService) sourceDistribution(ctx context.Context, assignedTo *string) (map[string]int, error) {
	dist := make(map[string]int, len(domain.AllSources()))
	for _, source := range domain.AllSources() {
		count, err := s.leads.CountBySource(ctx, source, assignedTo)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		dist[string(source)] = count
	}
	return dist, nil
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.cache.Client == nil {
		return false
	}
	raw, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
}

func (s *DashboardService) invalidate(ctx context.Context, assignedTo *string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	keys := []string{managerCacheKey}
	if assignedTo != nil {
		keys = append(keys, salesCacheKeyBase+*assignedTo)
	}
	if err := s.cache.Client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Debug("dashboard cache invalidation failed", zap.Error(err))
	}
}

func assignedToFromPayload(payload any) *string {
	switch p := payload.(type) {
	case events.LeadCreatedPayload:
		return p.AssignedTo
	case events.LeadAssignedPayload:
		return p.AssignedTo
	case events.LeadStatusChangedPayload:
		return p.AssignedTo
	case events.LeadConvertedPayload:
		return p.AssignedTo
	case events.LeadDeletedPayload:
		return p.AssignedTo
	case events.ActivityLoggedPayload:
		return p.AssignedTo
	default:
		return nil
	}
}

func percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func digests(leads []domain.Lead) []LeadDigest {
	result := make([]LeadDigest, 0, len(leads))
	for _, lead := range leads {
		result = append(result, LeadDigest{
			ID:                lead.ID,
			Name:              lead.Name,
			Phone:             lead.Phone,
			Status:            string(lead.Status),
			VehicleInterested: lead.VehicleInterested,
			AssignedName:      lead.AssignedName,
			FollowUpDate:      lead.FollowUpDate,
			LastActivityDate:  lead.LastActivityDate,
		})
	}
	return result
}
