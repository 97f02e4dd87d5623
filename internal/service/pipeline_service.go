package service

import (
	"context"

	"github.com/autopulse/crm-service/internal/auth"
	"github.com/autopulse/crm-service/internal/domain"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// BoardColumn is one kanban column with its member leads in creation
// order, newest first.
type BoardColumn struct {
	Stage domain.Stage
	Leads []EnrichedLead
}

// PipelineService projects leads onto the kanban board and applies board
// moves as status transitions.
type PipelineService struct {
	leadService *LeadService
}

// NewPipelineService creates the service.
func NewPipelineService(leadService *LeadService) *PipelineService {
	return &PipelineService{leadService: leadService}
}

// Board partitions the caller's visible leads into the fixed stage
// columns. A sales caller sees only their own leads; a manager sees all.
// The stage mapping is total, so every visible lead lands in exactly one
// column.
func (s *PipelineService) Board(ctx context.Context, principal *auth.Principal) ([]BoardColumn, error) {
	filter := ListFilter{}
	if principal.Role() == domain.RoleSales {
		filter.AssignedTo = &principal.User.ID
	}
	leads, err := s.leadService.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	byStage := make(map[domain.Stage][]EnrichedLead, len(domain.AllStages()))
	for _, lead := range leads {
		stage := domain.StageForStatus(lead.Status)
		byStage[stage] = append(byStage[stage], lead)
	}

	columns := make([]BoardColumn, 0, len(domain.AllStages()))
	for _, stage := range domain.AllStages() {
		columns = append(columns, BoardColumn{Stage: stage, Leads: byStage[stage]})
	}
	return columns, nil
}

// MoveResult carries the moved lead and the refreshed board so a client
// whose optimistic update failed or drifted can reconcile in one round
// trip.
type MoveResult struct {
	Lead  EnrichedLead
	Board []BoardColumn
}

// Move places a lead into the target column by updating its status
// through the transition recorder. Sales users may move only their own
// leads.
func (s *PipelineService) Move(ctx context.Context, principal *auth.Principal, leadID string, toStage string) (*MoveResult, error) {
	stage := domain.Stage(toStage)
	if !domain.ValidStage(stage) {
		return nil, apperrors.NewValidationError("unknown stage", map[string]any{"stage": toStage})
	}

	lead, err := s.leadService.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if principal.Role() == domain.RoleSales {
		if lead.AssignedTo == nil || *lead.AssignedTo != principal.User.ID {
			return nil, apperrors.NewForbidden("lead assigned to another user")
		}
	}

	status := string(domain.StatusForStage(stage))
	updated, err := s.leadService.Update(ctx, leadID, LeadUpdateInput{
		Status:    &status,
		UpdatedBy: &principal.User.Name,
	})
	if err != nil {
		return nil, err
	}

	board, err := s.Board(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &MoveResult{Lead: *updated, Board: board}, nil
}
