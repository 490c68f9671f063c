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
//  2. file (YAML) if SIGNUP_CONFIG is set
//  3. env (prefix SIGNUP_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx // reserved for future remote providers

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SIGNUP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SIGNUP_ADDR, SIGNUP_UPSTREAM_URL, ...
	// Map env keys like SIGNUP_UPSTREAM_URL -> upstream_url (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SIGNUP_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "signup_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.UpstreamURL == "":
		return nil, fmt.Errorf("%w: upstream_url must not be empty", ErrInvalidConfig)
	case cfg.UpstreamTimeoutMS <= 0:
		return nil, fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	case cfg.BannerTTLMS <= 0:
		return nil, fmt.Errorf("%w: banner_ttl_ms must be positive", ErrInvalidConfig)
	case cfg.CommandQueueSize <= 0:
		return nil, fmt.Errorf("%w: command_queue_size must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
