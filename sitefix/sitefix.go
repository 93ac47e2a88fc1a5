// Package sitefix guarantees that the singleton "site" row many web
// applications expect exists before a test body runs.
package sitefix

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anvil8/go-test-tools/store"
)

// Site is the row the sites table holds.
type Site struct {
	ID     int64
	Domain string
	Name   string
}

// Config describes the site row to guarantee. Zero values fall back to
// ID 1 and example.com, matching the conventional development site.
type Config struct {
	SiteID int64
	Domain string
	Name   string
}

func (c Config) withDefaults() Config {
	if c.SiteID == 0 {
		c.SiteID = 1
	}
	if c.Domain == "" {
		c.Domain = "example.com"
	}
	if c.Name == "" {
		c.Name = c.Domain
	}
	return c
}

// Ensure performs an idempotent get-or-create of the configured site
// row and returns it. Concurrent callers racing on the insert are
// resolved by the ON CONFLICT clause.
func Ensure(ctx context.Context, db store.DBTX, cfg Config) (*Site, error) {
	cfg = cfg.withDefaults()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sites (id, domain, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, cfg.SiteID, cfg.Domain, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("sitefix: inserting site: %w", err)
	}

	var site Site
	err = db.QueryRowContext(ctx, `
		SELECT id, domain, name FROM sites WHERE id = $1
	`, cfg.SiteID).Scan(&site.ID, &site.Domain, &site.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSiteNotFound
		}
		return nil, fmt.Errorf("sitefix: querying site: %w", err)
	}

	return &site, nil
}

// Required decorates a test body so the site row exists before the
// body runs.
func Required(db store.DBTX, cfg Config, fn func(t *testing.T)) func(t *testing.T) {
	return func(t *testing.T) {
		t.Helper()
		_, err := Ensure(context.Background(), db, cfg)
		require.NoError(t, err, "Failed to ensure site row")
		fn(t)
	}
}
