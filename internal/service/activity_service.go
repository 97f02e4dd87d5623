package service

import (
	"context"
	"database/sql"
	"errors"
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

// ActivityInput carries fields for a manual log entry.
type ActivityInput struct {
	Type        string
	Description string
	PerformedBy *string
}

// ActivityService manages the append-only activity log.
type ActivityService struct {
	store      *persistence.SQLite
	leads      repository.LeadRepository
	activities repository.ActivityRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ActivityDependencies bundles collaborators.
type ActivityDependencies struct {
	Store        *persistence.SQLite
	LeadRepo     repository.LeadRepository
	ActivityRepo repository.ActivityRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(deps ActivityDependencies) *ActivityService {
	return &ActivityService{
		store:      deps.Store,
		leads:      deps.LeadRepo,
		activities: deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// ListForLead returns a lead's activity log, newest first.
func (s *ActivityService) ListForLead(ctx context.Context, leadID string) ([]domain.Activity, error) {
	activities, err := s.activities.ListByLead(ctx, leadID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return activities, nil
}

// Append records an interaction against a lead and refreshes the lead's
// last-activity date in the same transaction.
func (s *ActivityService) Append(ctx context.Context, leadID string, input ActivityInput) (*domain.Activity, error) {
	if strings.TrimSpace(input.Type) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("type and description required", nil)
	}
	activityType := domain.ActivityType(input.Type)
	if !domain.ValidActivityType(activityType) {
		return nil, apperrors.NewValidationError("unknown activity type", map[string]any{"type": input.Type})
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"lead_id": leadID})
		}
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	today := now.Format(domain.DateLayout)
	activity := domain.Activity{
		ID:          uuid.NewString(),
		LeadID:      leadID,
		Type:        activityType,
		Description: strings.TrimSpace(input.Description),
		PerformedBy: performerOrDefault(input.PerformedBy),
		CreatedAt:   now,
	}

	lead.LastActivityDate = &today
	lead.UpdatedAt = now

	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		if err := repository.NewActivityRepository(tx).Create(ctx, &activity); err != nil {
			return err
		}
		return repository.NewLeadRepository(tx).Update(ctx, lead)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventActivityLogged,
			LeadID:    leadID,
			Actor:     activity.PerformedBy,
			Timestamp: now,
			Payload: events.ActivityLoggedPayload{
				ActivityID: activity.ID,
				Type:       activity.Type,
				AssignedTo: lead.AssignedTo,
			},
		})
	}

	s.logger.Debug("activity logged",
		zap.String("lead_id", leadID),
		zap.String("type", string(activity.Type)),
	)
	return &activity, nil
}
