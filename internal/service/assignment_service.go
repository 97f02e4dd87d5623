package service

import (
	"context"

	"github.com/autopulse/crm-service/internal/repository"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// AssignmentService routes new, unassigned leads to the least-loaded
// sales user.
type AssignmentService struct {
	users repository.UserRepository
}

// NewAssignmentService creates the service.
func NewAssignmentService(users repository.UserRepository) *AssignmentService {
	return &AssignmentService{users: users}
}

// ResolveAssignee picks the sales user with the fewest open leads, or nil
// when no sales users exist. The choice is deterministic: ties fall to
// whoever comes first in the repository's stable ordering.
func (s *AssignmentService) ResolveAssignee(ctx context.Context) (*repository.Workload, error) {
	workloads, err := s.users.SalesWorkloads(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return SelectLeastLoaded(workloads), nil
}

// SelectLeastLoaded returns the first workload holding the minimum open
// lead count, or nil for an empty slice. Pure function of its input.
func SelectLeastLoaded(workloads []repository.Workload) *repository.Workload {
	if len(workloads) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(workloads); i++ {
		if workloads[i].OpenLeads < workloads[best].OpenLeads {
			best = i
		}
	}
	return &workloads[best]
}
