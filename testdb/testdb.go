// Package testdb provisions the test database Go tests run against.
// It resolves the database name (a configured name or the base name
// with a "test_" prefix), opens connections through the pgx stdlib
// driver, applies goose migrations, and offers transaction-per-test
// isolation. The test database is persistent: setup only migrates, it
// never drops or recreates, so repeated test runs reuse the same
// database.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

// NamePrefix is prepended to the base database name when no explicit
// test database name is configured.
const NamePrefix = "test_"

// ConnectTimeout bounds the initial connectivity check in Open.
const ConnectTimeout = 5 * time.Second

// Config describes how to reach and prepare the test database.
// It is passed explicitly instead of being read from ambient globals.
type Config struct {
	// URL is the connection string of the application database. The
	// test database lives on the same server under TestName.
	URL string

	// Name overrides the derived test database name when non-empty.
	Name string

	// MigrationsDir holds goose migration files. When empty, the
	// "migrations" directory under the project root (the nearest
	// parent with a go.mod) is used.
	MigrationsDir string
}

// URLFromEnv returns the database URL for tests. It checks DATABASE_URL
// and TESTTOOLS_DB_URL in that order, returning the first non-empty value.
func URLFromEnv() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("TESTTOOLS_DB_URL")
}

// IsIntegrationEnvironment returns true if a database URL environment
// variable is set, indicating that integration tests can be run.
func IsIntegrationEnvironment() bool {
	return URLFromEnv() != ""
}

// SkipUnlessIntegration skips the calling test when no database URL is
// configured. Integration tests call this first.
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if !IsIntegrationEnvironment() {
		t.Skip("set DATABASE_URL or TESTTOOLS_DB_URL to run database integration tests")
	}
}

// TestName returns the name of the test database: the configured name
// when set, otherwise the base database name with the test prefix. A
// base name that already carries the prefix is returned unchanged.
func TestName(cfg Config) (string, error) {
	if cfg.Name != "" {
		return cfg.Name, nil
	}

	base, err := databaseName(cfg.URL)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(base, NamePrefix) {
		return base, nil
	}
	return NamePrefix + base, nil
}

// URL returns the connection string rewritten to point at the test
// database.
func URL(cfg Config) (string, error) {
	name, err := TestName(cfg)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("testdb: parsing database URL: %w", err)
	}
	u.Path = "/" + name
	return u.String(), nil
}

// Open connects to the test database and verifies connectivity. The
// connection is closed automatically when the test finishes.
func Open(t *testing.T, cfg Config) *sql.DB {
	t.Helper()

	dbURL, err := URL(cfg)
	require.NoError(t, err, "Failed to resolve test database URL")

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Logf("Warning: failed to close test database: %v", closeErr)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "Failed to ping test database")

	return db
}

// Prepare opens the test database and brings its schema up to date.
func Prepare(t *testing.T, cfg Config) *sql.DB {
	t.Helper()

	name, err := TestName(cfg)
	require.NoError(t, err, "Failed to resolve test database name")
	slog.Debug("preparing test database", slog.String("name", name))

	db := Open(t, cfg)
	Migrate(t, db, cfg)
	return db
}

// databaseName extracts the database name from a connection URL.
func databaseName(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("testdb: parsing database URL: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("testdb: database URL %q carries no database name", u.Redacted())
	}
	return name, nil
}
