package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadConfig builds the configuration in order of precedence (low -> high):
//  1. defaults (Defaults())
//  2. YAML file if COMFORT_CONFIG points at one
//  3. environment variables with prefix COMFORT_
//
// Environment keys are section-prefixed: COMFORT_DATABASE_HOST maps to
// database.host, COMFORT_SERVER_READ_TIMEOUT to server.read_timeout.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	k := koanf.New(".")

	if path := os.Getenv("COMFORT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("COMFORT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "COMFORT_"))
		// First underscore-delimited token is the section; the rest is the
		// key, which may itself contain underscores.
		parts := strings.SplitN(s, "_", 2)
		return strings.Join(parts, ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
