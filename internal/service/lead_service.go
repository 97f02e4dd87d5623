package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autopulse/crm-service/internal/domain"
	"github.com/autopulse/crm-service/internal/events"
	"github.com/autopulse/crm-service/internal/persistence"
	"github.com/autopulse/crm-service/internal/repository"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// EnrichedLead decorates a stored lead with the read-time computed
// temperature and recency fields.
type EnrichedLead struct {
	domain.Lead
	ComputedScore     domain.Score
	DaysSinceActivity *int
	IsAging           bool
}

// agingThresholdDays marks a lead as aging once this many days pass
// without a recorded activity.
const agingThresholdDays = 3

// LeadCreateInput carries intake fields for a new lead.
type LeadCreateInput struct {
	Name              string
	Phone             string
	Email             *string
	Source            string
	VehicleInterested *string
	Budget            *string
	Status            *string
	AssignedTo        *string
	FollowUpDate      *string
}

// LeadUpdateInput carries a partial update; nil fields are untouched.
type LeadUpdateInput struct {
	Name              *string
	Phone             *string
	Email             *string
	Source            *string
	VehicleInterested *string
	Budget            *string
	Status            *string
	AssignedTo        *string
	Score             *string
	FollowUpDate      *string
	UpdatedBy         *string
}

// LeadService implements the lead lifecycle: intake with duplicate
// detection and auto-assignment, status transitions with activity
// recording, conversion, and deletion.
type LeadService struct {
	store      *persistence.SQLite
	leads      repository.LeadRepository
	users      repository.UserRepository
	assignment *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// LeadDependencies bundles collaborators.
type LeadDependencies struct {
	Store      *persistence.SQLite
	LeadRepo   repository.LeadRepository
	UserRepo   repository.UserRepository
	Assignment *AssignmentService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewLeadService creates the service.
func NewLeadService(deps LeadDependencies) *LeadService {
	return &LeadService{
		store:      deps.Store,
		leads:      deps.LeadRepo,
		users:      deps.UserRepo,
		assignment: deps.Assignment,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// ListFilter captures list query parameters.
type ListFilter struct {
	AssignedTo *string
	Status     *string
	Source     *string
	Search     *string
	Sort       string
}

// List returns enriched leads. sort=hot orders hot before warm before
// cold by the computed score, then newest first.
func (s *LeadService) List(ctx context.Context, filter ListFilter) ([]EnrichedLead, error) {
	repoFilter := repository.LeadFilter{
		AssignedTo: filter.AssignedTo,
		SearchTerm: filter.Search,
	}
	if filter.Status != nil {
		status, ok := domain.CanonicalStatus(*filter.Status)
		if !ok {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *filter.Status})
		}
		repoFilter.Status = &status
	}
	if filter.Source != nil {
		source := domain.LeadSource(*filter.Source)
		if !domain.ValidSource(source) {
			return nil, apperrors.NewValidationError("unknown source", map[string]any{"source": *filter.Source})
		}
		repoFilter.Source = &source
	}

	leads, err := s.leads.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	enriched := make([]EnrichedLead, 0, len(leads))
	for i := range leads {
		enriched = append(enriched, Enrich(leads[i], now))
	}

	if filter.Sort == "hot" {
		sort.SliceStable(enriched, func(i, j int) bool {
			ri, rj := enriched[i].ComputedScore.Rank(), enriched[j].ComputedScore.Rank()
			if ri != rj {
				return ri < rj
			}
			return enriched[i].CreatedAt.After(enriched[j].CreatedAt)
		})
	}
	return enriched, nil
}

// Get returns one enriched lead.
func (s *LeadService) Get(ctx context.Context, id string) (*EnrichedLead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"lead_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	e := Enrich(*lead, time.Now())
	return &e, nil
}

// Summary reports lead counts per status over the full stored
// enumeration; absent statuses report zero.
func (s *LeadService) Summary(ctx context.Context) (map[string]int, error) {
	summary := make(map[string]int, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		count, err := s.leads.CountByStatus(ctx, status, nil)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		summary[string(status)] = count
	}
	return summary, nil
}

// CheckDuplicate reports whether a lead with the same normalized phone
// already exists, returning the colliding record when so.
func (s *LeadService) CheckDuplicate(ctx context.Context, phone string) (*EnrichedLead, error) {
	existing, err := s.leads.GetByNormalizedPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	e := Enrich(*existing, time.Now())
	return &e, nil
}

// CreateResult pairs the stored lead with the assignment outcome.
type CreateResult struct {
	Lead         EnrichedLead
	AutoAssigned bool
}

// Create validates intake fields, rejects duplicate phone numbers with
// the colliding record attached, resolves an assignee when none is
// given, and records the intake system activity atomically with the row.
func (s *LeadService) Create(ctx context.Context, input LeadCreateInput) (*CreateResult, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Phone) == "" || strings.TrimSpace(input.Source) == "" {
		return nil, apperrors.NewValidationError("name, phone, source required", nil)
	}
	source := domain.LeadSource(input.Source)
	if !domain.ValidSource(source) {
		return nil, apperrors.NewValidationError("unknown source", map[string]any{"source": input.Source})
	}
	status := domain.StatusNew
	if input.Status != nil {
		canonical, ok := domain.CanonicalStatus(*input.Status)
		if !ok {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		status = canonical
	}
	if input.FollowUpDate != nil {
		if _, err := time.Parse(domain.DateLayout, *input.FollowUpDate); err != nil {
			return nil, apperrors.NewValidationError("follow_up_date must be YYYY-MM-DD", nil)
		}
	}

	if existing, err := s.leads.GetByNormalizedPhone(ctx, input.Phone); err == nil {
		return nil, duplicateLeadError(existing)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	assignedTo := input.AssignedTo
	autoAssigned := false
	var assigneeName string
	if assignedTo == nil {
		workload, err := s.assignment.ResolveAssignee(ctx)
		if err != nil {
			return nil, err
		}
		autoAssigned = true
		if workload != nil {
			assignedTo = &workload.UserID
			assigneeName = workload.Name
		}
	} else {
		assignee, err := s.users.GetByID(ctx, *assignedTo)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": *assignedTo})
			}
			return nil, apperrors.MapError(err)
		}
		assigneeName = assignee.Name
	}

	now := time.Now()
	today := now.Format(domain.DateLayout)
	lead := domain.Lead{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(input.Name),
		Phone:             strings.TrimSpace(input.Phone),
		Email:             input.Email,
		Source:            source,
		VehicleInterested: input.VehicleInterested,
		Budget:            input.Budget,
		Status:            status,
		AssignedTo:        assignedTo,
		Score:             domain.ScoreWarm,
		FollowUpDate:      input.FollowUpDate,
		LastActivityDate:  &today,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	activity := domain.Activity{
		ID:          uuid.NewString(),
		LeadID:      lead.ID,
		Type:        domain.ActivitySystem,
		Description: intakeDescription(autoAssigned, assigneeName, source),
		PerformedBy: domain.SystemPerformer,
		CreatedAt:   now,
	}

	err := s.store.InTx(ctx, func(tx *sql.Tx) error {
		if err := repository.NewLeadRepository(tx).Create(ctx, &lead); err != nil {
			return err
		}
		return repository.NewActivityRepository(tx).Create(ctx, &activity)
	})
	if err != nil {
		// The unique index on normalized phone closes the check-then-insert
		// race; surface it the same way as the explicit check.
		if strings.Contains(err.Error(), "UNIQUE") {
			if existing, lookupErr := s.leads.GetByNormalizedPhone(ctx, input.Phone); lookupErr == nil {
				return nil, duplicateLeadError(existing)
			}
			return nil, apperrors.NewConflict("duplicate lead detected", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventLeadCreated, lead.ID, domain.SystemPerformer, events.LeadCreatedPayload{
		Source:       lead.Source,
		Status:       lead.Status,
		AssignedTo:   lead.AssignedTo,
		AutoAssigned: autoAssigned,
	})
	if lead.AssignedTo != nil {
		s.publish(ctx, events.EventLeadAssigned, lead.ID, domain.SystemPerformer, events.LeadAssignedPayload{
			AssignedTo:   lead.AssignedTo,
			AssignedName: &assigneeName,
		})
	}
	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID),
		zap.Bool("auto_assigned", autoAssigned),
	)

	stored, err := s.Get(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	return &CreateResult{Lead: *stored, AutoAssigned: autoAssigned}, nil
}

// Update applies a partial field update. A status change is routed
// through the transition recorder: the new status, its activity entry,
// and the refreshed last-activity date commit in one transaction. An
// update that leaves the status unchanged records no status activity.
func (s *LeadService) Update(ctx context.Context, id string, input LeadUpdateInput) (*EnrichedLead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"lead_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := lead.Status

	if input.Name != nil {
		lead.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		lead.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		lead.Email = input.Email
	}
	if input.Source != nil {
		source := domain.LeadSource(*input.Source)
		if !domain.ValidSource(source) {
			return nil, apperrors.NewValidationError("unknown source", map[string]any{"source": *input.Source})
		}
		lead.Source = source
	}
	if input.VehicleInterested != nil {
		lead.VehicleInterested = input.VehicleInterested
	}
	if input.Budget != nil {
		lead.Budget = input.Budget
	}
	if input.AssignedTo != nil {
		if _, err := s.users.GetByID(ctx, *input.AssignedTo); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": *input.AssignedTo})
			}
			return nil, apperrors.MapError(err)
		}
		lead.AssignedTo = input.AssignedTo
	}
	if input.Score != nil {
		score := domain.Score(*input.Score)
		if score != domain.ScoreHot && score != domain.ScoreWarm && score != domain.ScoreCold {
			return nil, apperrors.NewValidationError("unknown score", map[string]any{"score": *input.Score})
		}
		lead.Score = score
	}
	if input.FollowUpDate != nil {
		if _, err := time.Parse(domain.DateLayout, *input.FollowUpDate); err != nil {
			return nil, apperrors.NewValidationError("follow_up_date must be YYYY-MM-DD", nil)
		}
		lead.FollowUpDate = input.FollowUpDate
	}
	if input.Status != nil {
		canonical, ok := domain.CanonicalStatus(*input.Status)
		if !ok {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		lead.Status = canonical
	}

	now := time.Now()
	lead.UpdatedAt = now
	statusChanged := lead.Status != oldStatus
	if statusChanged {
		today := now.Format(domain.DateLayout)
		lead.LastActivityDate = &today
	}

	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		if err := repository.NewLeadRepository(tx).Update(ctx, lead); err != nil {
			return err
		}
		if !statusChanged {
			return nil
		}
		return repository.NewActivityRepository(tx).Create(ctx, &domain.Activity{
			ID:          uuid.NewString(),
			LeadID:      lead.ID,
			Type:        domain.ActivityStatus,
			Description: fmt.Sprintf("Status changed: %s → %s", oldStatus, lead.Status),
			PerformedBy: performerOrDefault(input.UpdatedBy),
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if statusChanged {
		s.publish(ctx, events.EventLeadStatusChanged, lead.ID, performerOrDefault(input.UpdatedBy), events.LeadStatusChangedPayload{
			OldStatus:  oldStatus,
			NewStatus:  lead.Status,
			AssignedTo: lead.AssignedTo,
		})
	}

	return s.Get(ctx, id)
}

// Convert forces a lead to Converted regardless of its prior status and
// appends one conversion activity per call.
func (s *LeadService) Convert(ctx context.Context, id string, performedBy *string) (*EnrichedLead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"lead_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	priorStatus := lead.Status
	now := time.Now()
	today := now.Format(domain.DateLayout)
	lead.Status = domain.StatusConverted
	lead.UpdatedAt = now
	lead.LastActivityDate = &today

	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		if err := repository.NewLeadRepository(tx).Update(ctx, lead); err != nil {
			return err
		}
		return repository.NewActivityRepository(tx).Create(ctx, &domain.Activity{
			ID:          uuid.NewString(),
			LeadID:      lead.ID,
			Type:        domain.ActivityStatus,
			Description: "Lead converted to Sale!",
			PerformedBy: performerOrDefault(performedBy),
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventLeadConverted, lead.ID, performerOrDefault(performedBy), events.LeadConvertedPayload{
		PriorStatus: priorStatus,
		AssignedTo:  lead.AssignedTo,
	})

	return s.Get(ctx, id)
}

// Delete removes a lead; its activity log goes with it via the foreign
// key cascade.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound("lead", map[string]any{"lead_id": id})
		}
		return apperrors.MapError(err)
	}
	if err := s.leads.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventLeadDeleted, id, domain.SystemPerformer, events.LeadDeletedPayload{
		AssignedTo: lead.AssignedTo,
	})
	return nil
}

func (s *LeadService) publish(ctx context.Context, eventType events.EventType, leadID, actor string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		LeadID:    leadID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// Enrich computes the read-time score and recency fields for a lead.
func Enrich(lead domain.Lead, now time.Time) EnrichedLead {
	e := EnrichedLead{
		Lead:          lead,
		ComputedScore: domain.ComputeScore(lead.Status, lead.LastActivityDate, now),
	}
	if domain.HasActivity(lead.LastActivityDate) {
		days := domain.DaysSinceActivity(lead.LastActivityDate, now)
		e.DaysSinceActivity = &days
		e.IsAging = days >= agingThresholdDays
	}
	return e
}

func intakeDescription(autoAssigned bool, assigneeName string, source domain.LeadSource) string {
	if autoAssigned && assigneeName != "" {
		return fmt.Sprintf("Lead auto-assigned to %s (lowest workload).", assigneeName)
	}
	if autoAssigned {
		return "Lead created unassigned (no sales users available)."
	}
	return fmt.Sprintf("New lead captured via %s.", source)
}

func performerOrDefault(performer *string) string {
	if performer != nil && strings.TrimSpace(*performer) != "" {
		return strings.TrimSpace(*performer)
	}
	return domain.DefaultPerformer
}

func duplicateLeadError(existing *domain.Lead) error {
	return apperrors.NewConflict("duplicate lead detected", map[string]any{
		"existing": map[string]any{
			"id":    existing.ID,
			"name":  existing.Name,
			"phone": existing.Phone,
		},
	})
}
