package store

import (
	"context"
	"database/sql"
)

// DBTX is the minimal capability interface for the data-access path.
// It is implemented by both *sql.DB and *sql.Tx, allowing helpers to
// work with either a database connection or a transaction, and it is
// the seam where a failing stand-in can be injected to detect unwanted
// database access (see the guard package).
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Saver persists a single entity. It is the port the factory package
// uses when asked to create (rather than merely build) instances.
type Saver[T any] interface {
	Save(ctx context.Context, entity T) error
}

// SaverFunc adapts an ordinary function to the Saver interface.
type SaverFunc[T any] func(ctx context.Context, entity T) error

// Save implements Saver.
func (f SaverFunc[T]) Save(ctx context.Context, entity T) error {
	return f(ctx, entity)
}
