// Package config defines gateway configuration structures and loading hooks.
//
// Conventions:
// - Keep defaults in New and layer file/env on top in Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Default configuration constants.
const (
	defaultUpstreamTimeout = 10 * time.Second
	defaultBannerTTL       = 5 * time.Second
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UpstreamURL is the base URL of the remote activities service.
	UpstreamURL string `koanf:"upstream_url"`

	// UpstreamTimeoutMS bounds each call to the remote service.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// BannerTTLMS controls how long feedback messages stay visible.
	BannerTTLMS int `koanf:"banner_ttl_ms"`

	// CommandQueueSize bounds the in-memory command dispatch queue.
	CommandQueueSize int `koanf:"command_queue_size"`

	// CSRFKey is the hex-encoded 32-byte CSRF secret. A per-start random
	// key is generated when empty (sessions won't survive restarts).
	CSRFKey string `koanf:"csrf_key"`

	// SecureCookies marks the CSRF cookie Secure; disable for plain-HTTP dev.
	SecureCookies bool `koanf:"secure_cookies"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8080",
		UpstreamURL:       "http://localhost:8000",
		UpstreamTimeoutMS: int(defaultUpstreamTimeout / time.Millisecond),
		BannerTTLMS:       int(defaultBannerTTL / time.Millisecond),
		CommandQueueSize:  64,
		SecureCookies:     false,
	}
}

// UpstreamTimeout returns the upstream timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// BannerTTL returns the feedback banner lifetime as a duration.
func (c *Config) BannerTTL() time.Duration {
	return time.Duration(c.BannerTTLMS) * time.Millisecond
}
