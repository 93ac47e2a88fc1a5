package testdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// MigrationTableName is the table goose uses to track applied
// migrations.
const MigrationTableName = "schema_migrations"

// Migrate brings the test database schema up to date by running goose
// migrations. The database itself is never dropped or recreated.
func Migrate(t *testing.T, db *sql.DB, cfg Config) {
	t.Helper()

	dir, err := migrationsDir(cfg)
	require.NoError(t, err, "Failed to locate migrations directory")
	require.DirExists(t, dir, "Migrations directory does not exist: %s", dir)

	goose.SetLogger(&testGooseLogger{t: t})
	goose.SetTableName(MigrationTableName)
	goose.SetBaseFS(os.DirFS(dir))

	require.NoError(t, goose.Up(db, "."), "Failed to run migrations")
}

// Sync runs migrations without a testing.T, for use in TestMain before
// any test has started.
func Sync(db *sql.DB, cfg Config) error {
	dir, err := migrationsDir(cfg)
	if err != nil {
		return err
	}

	goose.SetTableName(MigrationTableName)
	goose.SetBaseFS(os.DirFS(dir))

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("testdb: running migrations: %w", err)
	}
	return nil
}

func migrationsDir(cfg Config) (string, error) {
	if cfg.MigrationsDir != "" {
		return cfg.MigrationsDir, nil
	}
	root, err := findProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "migrations"), nil
}

// findProjectRoot locates the project root directory by traversing
// upwards until it finds a directory with a go.mod file.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("testdb: getting current directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("testdb: could not find go.mod in any parent directory")
		}
		dir = parent
	}
}

// testGooseLogger routes goose output through the test log.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Log("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatal("goose fatal error: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}
