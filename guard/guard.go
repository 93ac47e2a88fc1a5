// Package guard detects unwanted database access in tests. It
// provides a store.DBTX stand-in whose every method fails, plus
// helpers to swap the stand-in in for the scope of one test and
// restore the real handle afterwards, even when the test panics.
package guard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/anvil8/go-test-tools/store"
)

// ErrDatabaseAccess is wrapped by every failure the stand-in produces.
var ErrDatabaseAccess = errors.New("no touching the database")

// noDB is the failing stand-in. The zero value is not usable; build
// one with NoDB.
type noDB struct {
	msg string
}

// NoDB returns a store.DBTX whose every method fails with
// ErrDatabaseAccess. An optional message replaces the default one in
// the error text.
func NoDB(msg ...string) store.DBTX {
	g := &noDB{}
	if len(msg) > 0 {
		g.msg = msg[0]
	}
	return g
}

func (g *noDB) fail(op string) error {
	if g.msg != "" {
		return fmt.Errorf("%s: %w: %s", op, ErrDatabaseAccess, g.msg)
	}
	return fmt.Errorf("%s: %w", op, ErrDatabaseAccess)
}

func (g *noDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, g.fail("ExecContext")
}

func (g *noDB) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, g.fail("PrepareContext")
}

func (g *noDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, g.fail("QueryContext")
}

// QueryRowContext cannot report failure through its signature, so the
// stand-in panics. The panic still carries ErrDatabaseAccess.
func (g *noDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	panic(g.fail("QueryRowContext"))
}

// Patch replaces the pointed-to handle with the failing stand-in and
// returns a function restoring the original. Callers defer the restore
// so it runs on every exit path:
//
//	restore := guard.Patch(&app.DB)
//	defer restore()
func Patch(db *store.DBTX, msg ...string) (restore func()) {
	original := *db
	*db = NoDB(msg...)
	return func() { *db = original }
}

// WithNoDB patches the handle for the remainder of the test and
// restores it through t.Cleanup, which runs whether the test passes,
// fails, or panics.
func WithNoDB(t *testing.T, db *store.DBTX, msg ...string) {
	t.Helper()
	t.Cleanup(Patch(db, msg...))
}
