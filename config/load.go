package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file and from
// environment variables prefixed with TESTTOOLS_. Environment
// variables take precedence over values from the config file.
// Returns a populated Config or an error if loading/validation fails.
//
// path may name a config file directly or a directory containing
// testtools.yaml; an empty path skips file loading entirely.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.url", "")
	v.SetDefault("database.test_name", "")
	v.SetDefault("database.migrations_dir", "")
	v.SetDefault("profile.log_dir", "")
	v.SetDefault("site.id", 1)
	v.SetDefault("site.domain", "example.com")
	v.SetDefault("site.name", "")
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("TESTTOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			v.SetConfigFile(path)
		} else {
			v.SetConfigName("testtools")
			v.SetConfigType("yaml")
			v.AddConfigPath(path)
		}

		if err := v.ReadInConfig(); err != nil {
			// A missing file is fine; env vars and defaults still apply.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}
