package repository

import (
	"context"
	"time"

	"github.com/autopulse/crm-service/internal/domain"
)

// Workload pairs a sales user with their open (non-terminal) lead count.
type Workload struct {
	UserID    string
	Name      string
	OpenLeads int
}

// UserRepository encapsulates user persistence.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, role *domain.Role) ([]domain.User, error)
	SalesWorkloads(ctx context.Context) ([]Workload, error)
}

type userRepository struct {
	q Querier
}

// NewUserRepository instantiates the repository.
func NewUserRepository(q Querier) UserRepository {
	return &userRepository{q: q}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user      domain.User
		createdAt string
	)
	if err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&createdAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if role != nil {
		query += ` WHERE role = ?`
		args = append(args, *role)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var (
			user      domain.User
			createdAt string
		)
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &createdAt); err != nil {
			return nil, err
		}
		user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, user)
	}
	return result, rows.Err()
}

// SalesWorkloads returns every sales user with their open lead count in a
// stable order (creation time, then id) so assignment tie-breaks stay
// deterministic.
func (r *userRepository) SalesWorkloads(ctx context.Context) ([]Workload, error) {
	const query = `
        SELECT u.id, u.name, COUNT(l.id) AS open_leads
        FROM users u
        LEFT JOIN leads l ON l.assigned_to = u.id AND l.status NOT IN (?, ?)
        WHERE u.role = ?
        GROUP BY u.id, u.name
        ORDER BY u.created_at ASC, u.id ASC`
	rows, err := r.q.QueryContext(ctx, query, domain.StatusConverted, domain.StatusNotInterested, domain.RoleSales)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Workload
	for rows.Next() {
		var w Workload
		if err := rows.Scan(&w.UserID, &w.Name, &w.OpenLeads); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
