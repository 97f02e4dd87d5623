package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/autopulse/crm-service/internal/domain"
	"github.com/autopulse/crm-service/internal/repository"
	apperrors "github.com/autopulse/crm-service/pkg/util"
)

// UserWithCounts decorates a user with their lead workload figures.
type UserWithCounts struct {
	domain.User
	ActiveLeads int
	TotalLeads  int
	Converted   int
}

// UserService exposes user reads enriched with workload counts.
type UserService struct {
	users repository.UserRepository
	leads repository.LeadRepository
}

// NewUserService creates the service.
func NewUserService(users repository.UserRepository, leads repository.LeadRepository) *UserService {
	return &UserService{users: users, leads: leads}
}

// List returns users, optionally filtered by role, each enriched with
// active, total, and converted lead counts.
func (s *UserService) List(ctx context.Context, role *string) ([]UserWithCounts, error) {
	var roleFilter *domain.Role
	if role != nil {
		r := domain.Role(*role)
		if !domain.ValidRole(r) {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *role})
		}
		roleFilter = &r
	}

	users, err := s.users.List(ctx, roleFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]UserWithCounts, 0, len(users))
	for _, user := range users {
		total, err := s.leads.CountAssigned(ctx, user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		converted, err := s.leads.CountConverted(ctx, &user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		notInterested, err := s.leads.CountByStatus(ctx, domain.StatusNotInterested, &user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, UserWithCounts{
			User:        user,
			ActiveLeads: total - converted - notInterested,
			TotalLeads:  total,
			Converted:   converted,
		})
	}
	return result, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
