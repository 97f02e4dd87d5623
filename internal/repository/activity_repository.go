package repository

import (
	"context"
	"time"

	"github.com/autopulse/crm-service/internal/domain"
)

// ActivityRepository encapsulates activity log persistence. Entries are
// append-only; there is deliberately no update or single-row delete.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	ListByLead(ctx context.Context, leadID string) ([]domain.Activity, error)
	CountOnDateForAssignee(ctx context.Context, userID, date string) (int, error)
	CountByLead(ctx context.Context, leadID string) (int, error)
}

type activityRepository struct {
	q Querier
}

// NewActivityRepository instantiates the repository over db or an open tx.
func NewActivityRepository(q Querier) ActivityRepository {
	return &activityRepository{q: q}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (id, lead_id, type, description, performed_by, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		activity.ID,
		activity.LeadID,
		activity.Type,
		activity.Description,
		activity.PerformedBy,
		activity.CreatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *activityRepository) ListByLead(ctx context.Context, leadID string) ([]domain.Activity, error) {
	const query = `
        SELECT id, lead_id, type, description, performed_by, created_at
        FROM activities WHERE lead_id = ? ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Activity
	for rows.Next() {
		var (
			activity  domain.Activity
			createdAt string
		)
		if err := rows.Scan(&activity.ID, &activity.LeadID, &activity.Type, &activity.Description, &activity.PerformedBy, &createdAt); err != nil {
			return nil, err
		}
		activity.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, activity)
	}
	return result, rows.Err()
}

// CountOnDateForAssignee counts activities logged on one calendar day
// against leads assigned to the given user; feeds the trailing weekly
// activity series.
func (r *activityRepository) CountOnDateForAssignee(ctx context.Context, userID, date string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM activities
        WHERE lead_id IN (SELECT id FROM leads WHERE assigned_to = ?)
          AND substr(created_at, 1, 10) = ?`
	var n int
	if err := r.q.QueryRowContext(ctx, query, userID, date).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *activityRepository) CountByLead(ctx context.Context, leadID string) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE lead_id = ?`, leadID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
