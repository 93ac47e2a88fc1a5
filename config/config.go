// Package config holds the library's process-level settings: where the
// test database lives, where profiler logs go, and which site row to
// guarantee. Everything here used to be ambient global state in older
// test suites; it is an explicit struct so each helper receives only
// the piece it needs.
package config

// Config holds all test-tools configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Site     SiteConfig     `mapstructure:"site"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig contains all test-database settings.
type DatabaseConfig struct {
	// URL of the application database; the test database is derived
	// from it.
	URL string `mapstructure:"url" validate:"omitempty,uri"`

	// TestName overrides the derived "test_"-prefixed database name.
	TestName string `mapstructure:"test_name"`

	// MigrationsDir holds goose migration files.
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// ProfileConfig contains profiler output settings.
type ProfileConfig struct {
	// LogDir receives profile logs; empty means the system temp dir.
	LogDir string `mapstructure:"log_dir"`
}

// SiteConfig describes the singleton site row tests may rely on.
type SiteConfig struct {
	ID     int64  `mapstructure:"id" validate:"omitempty,gt=0"`
	Domain string `mapstructure:"domain"`
	Name   string `mapstructure:"name"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}
