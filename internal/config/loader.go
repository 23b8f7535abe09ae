package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KUDOS_CONFIG is set
//  3. env (prefix KUDOS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("KUDOS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: KUDOS_ADDR, KUDOS_MAX_OPS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("KUDOS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "kudos_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxOps < 1:
		return fmt.Errorf("%w: max_ops must be at least 1", ErrInvalidConfig)
	case c.CompensationEnabled && c.PrivilegedActor == "":
		return fmt.Errorf("%w: compensation_enabled requires privileged_actor", ErrInvalidConfig)
	}
	return nil
}
