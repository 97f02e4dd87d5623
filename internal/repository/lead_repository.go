package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/autopulse/crm-service/internal/domain"
)

// LeadFilter captures lead search parameters.
type LeadFilter struct {
	AssignedTo *string
	Status     *domain.LeadStatus
	Source     *domain.LeadSource
	SearchTerm *string
}

// LeadRepository encapsulates lead persistence.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Update(ctx context.Context, lead *domain.Lead) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	GetByNormalizedPhone(ctx context.Context, phone string) (*domain.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error)

	CountAll(ctx context.Context) (int, error)
	CountAssigned(ctx context.Context, userID string) (int, error)
	CountByStatus(ctx context.Context, status domain.LeadStatus, assignedTo *string) (int, error)
	CountBySource(ctx context.Context, source domain.LeadSource, assignedTo *string) (int, error)
	CountConverted(ctx context.Context, assignedTo *string) (int, error)
	CountConvertedInMonth(ctx context.Context, month string, assignedTo *string) (int, error)
	CountCreatedInMonth(ctx context.Context, month string) (int, error)
	CountPendingFollowups(ctx context.Context, userID, today string) (int, error)
	ListOverdue(ctx context.Context, userID, today string) ([]domain.Lead, error)
	ListInactive(ctx context.Context, userID, activityCutoff string) ([]domain.Lead, error)
}

type leadRepository struct {
	q Querier
}

// NewLeadRepository instantiates the repository over db or an open tx.
func NewLeadRepository(q Querier) LeadRepository {
	return &leadRepository{q: q}
}

const leadColumns = `l.id, l.name, l.phone, l.email, l.source, l.vehicle_interested, l.budget,
	l.status, l.assigned_to, u.name, l.score, l.follow_up_date, l.last_activity_date,
	l.created_at, l.updated_at`

const leadBase = `SELECT ` + leadColumns + ` FROM leads l LEFT JOIN users u ON u.id = l.assigned_to`

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	const query = `
        INSERT INTO leads (id, name, phone, email, source, vehicle_interested, budget, status,
            assigned_to, score, follow_up_date, last_activity_date, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.Source,
		lead.VehicleInterested,
		lead.Budget,
		lead.Status,
		lead.AssignedTo,
		lead.Score,
		lead.FollowUpDate,
		lead.LastActivityDate,
		lead.CreatedAt.Format(time.RFC3339),
		lead.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	const query = `
        UPDATE leads SET name = ?, phone = ?, email = ?, source = ?, vehicle_interested = ?,
            budget = ?, status = ?, assigned_to = ?, score = ?, follow_up_date = ?,
            last_activity_date = ?, updated_at = ?
        WHERE id = ?`
	res, err := r.q.ExecContext(ctx, query,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.Source,
		lead.VehicleInterested,
		lead.Budget,
		lead.Status,
		lead.AssignedTo,
		lead.Score,
		lead.FollowUpDate,
		lead.LastActivityDate,
		lead.UpdatedAt.Format(time.RFC3339),
		lead.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return r.fetchSingle(ctx, leadBase+` WHERE l.id = ?`, id)
}

func (r *leadRepository) GetByNormalizedPhone(ctx context.Context, phone string) (*domain.Lead, error) {
	return r.fetchSingle(ctx, leadBase+` WHERE replace(l.phone, ' ', '') = ?`, domain.NormalizePhone(phone))
}

func (r *leadRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Lead, error) {
	lead, err := scanLead(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedTo != nil {
		clauses = append(clauses, "l.assigned_to = ?")
		args = append(args, *filter.AssignedTo)
	}
	if filter.Status != nil {
		clauses = append(clauses, "l.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Source != nil {
		clauses = append(clauses, "l.source = ?")
		args = append(args, *filter.Source)
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.TrimSpace(*filter.SearchTerm) + "%"
		clauses = append(clauses, "(l.name LIKE ? OR l.phone LIKE ? OR l.vehicle_interested LIKE ?)")
		args = append(args, search, search, search)
	}

	query := leadBase + ` WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY l.created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (r *leadRepository) CountAll(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM leads`)
}

func (r *leadRepository) CountAssigned(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM leads WHERE assigned_to = ?`, userID)
}

func (r *leadRepository) CountByStatus(ctx context.Context, status domain.LeadStatus, assignedTo *string) (int, error) {
	if assignedTo != nil {
		return r.count(ctx, `SELECT COUNT(*) FROM leads WHERE status = ? AND assigned_to = ?`, status, *assignedTo)
	}
	return r.count(ctx, `SELECT COUNT(*) FROM leads WHERE status = ?`, status)
}

func (r *leadRepository) CountBySource(ctx context.Context, source domain.LeadSource, assignedTo *string) (int, error) {
	if assignedTo != nil {
		return r.count(ctx, `SELECT COUNT(*) FROM leads WHERE source = ? AND assigned_to = ?`, source, *assignedTo)
	}
	return r.count(ctx, `SELECT COUNT(*) FROM leads WHERE source = ?`, source)
}

func (r *leadRepository) CountConverted(ctx context.Context, assignedTo *string) (int, error) {
	return r.CountByStatus(ctx, domain.StatusConverted, assignedTo)
}

func (r *leadRepository) CountConvertedInMonth(ctx context.Context, month string, assignedTo *string) (int, error) {
	if assignedTo != nil {
		return r.count(ctx,
			`SELECT COUNT(*) FROM leads WHERE status = ? AND substr(updated_at, 1, 7) = ? AND assigned_to = ?`,
			domain.StatusConverted, month, *assignedTo)
	}
	return r.count(ctx,
		`SELECT COUNT(*) FROM leads WHERE status = ? AND substr(updated_at, 1, 7) = ?`,
		domain.StatusConverted, month)
}

func (r *leadRepository) CountCreatedInMonth(ctx context.Context, month string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM leads WHERE substr(created_at, 1, 7) = ?`, month)
}

func (r *leadRepository) CountPendingFollowups(ctx context.Context, userID, today string) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM leads
         WHERE assigned_to = ? AND follow_up_date >= ? AND status NOT IN (?, ?)`,
		userID, today, domain.StatusConverted, domain.StatusNotInterested)
}

func (r *leadRepository) ListOverdue(ctx context.Context, userID, today string) ([]domain.Lead, error) {
	query := leadBase + `
        WHERE l.assigned_to = ? AND l.follow_up_date < ? AND l.status NOT IN (?, ?)
        ORDER BY l.follow_up_date ASC`
	rows, err := r.q.QueryContext(ctx, query, userID, today, domain.StatusConverted, domain.StatusNotInterested)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (r *leadRepository) ListInactive(ctx context.Context, userID, activityCutoff string) ([]domain.Lead, error) {
	query := leadBase + `
        WHERE l.assigned_to = ? AND l.last_activity_date <= ? AND l.status NOT IN (?, ?)
        ORDER BY l.last_activity_date ASC`
	rows, err := r.q.QueryContext(ctx, query, userID, activityCutoff, domain.StatusConverted, domain.StatusNotInterested)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (r *leadRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var (
		lead         domain.Lead
		email        sql.NullString
		vehicle      sql.NullString
		budget       sql.NullString
		assignedTo   sql.NullString
		assignedName sql.NullString
		followUp     sql.NullString
		lastActivity sql.NullString
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&email,
		&lead.Source,
		&vehicle,
		&budget,
		&lead.Status,
		&assignedTo,
		&assignedName,
		&lead.Score,
		&followUp,
		&lastActivity,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	lead.Email = nullableString(email)
	lead.VehicleInterested = nullableString(vehicle)
	lead.Budget = nullableString(budget)
	lead.AssignedTo = nullableString(assignedTo)
	lead.AssignedName = nullableString(assignedName)
	lead.FollowUpDate = nullableString(followUp)
	lead.LastActivityDate = nullableString(lastActivity)
	lead.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	lead.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &lead, nil
}

func scanLeads(rows *sql.Rows) ([]domain.Lead, error) {
	var result []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *lead)
	}
	return result, rows.Err()
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
