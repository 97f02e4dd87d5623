package repository

import (
	"context"
	"database/sql"
)

// Querier abstracts *sql.DB and *sql.Tx so repositories can run either
// standalone or inside a caller-managed transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
