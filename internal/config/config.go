// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

// Package config loads Reelgate configuration with koanf.
//
// Values are layered, lowest priority first:
//
//  1. Defaults from defaultConfig
//  2. An optional YAML file (CONFIG_PATH, or the first of DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// The loaded Config is validated before it is returned.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	ClipStore ClipStoreConfig `koanf:"clipstore"`
	NATS      NATSConfig      `koanf:"nats"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the operational HTTP listener (health, readiness,
// metrics).
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitRequests per RateLimitWindow per client IP. Zero disables.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig configures token validation and the role directory.
type SecurityConfig struct {
	// JWTSecret is the HKDF input keying material for token signing keys.
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`

	// TokenTTL is the lifetime of tokens derived by Authenticate.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// HKDFContext is the HKDF info string; changing it rotates the key.
	HKDFContext string `koanf:"hkdf_context"`

	// PolicyPath is a Casbin CSV policy; empty uses the embedded policy.
	PolicyPath   string        `koanf:"policy_path"`
	PolicyReload time.Duration `koanf:"policy_reload"`
	RoleCacheTTL time.Duration `koanf:"role_cache_ttl"`

	// RevocationBackend is memory or badger.
	RevocationBackend string `koanf:"revocation_backend"`
	RevocationPath    string `koanf:"revocation_path"`
}

// CatalogConfig configures the DuckDB movie and ad catalog.
type CatalogConfig struct {
	Path         string        `koanf:"path"`
	ReadOnly     bool          `koanf:"read_only"`
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// Bootstrap creates the schema on a writable catalog at startup.
	Bootstrap bool `koanf:"bootstrap"`
}

// ClipStoreConfig configures the clip storage HTTP client.
type ClipStoreConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// NATSConfig configures the activity publisher and the optional embedded
// server.
type NATSConfig struct {
	URL string `koanf:"url"`

	// Embedded starts an in-process nats-server with JetStream.
	Embedded bool   `koanf:"embedded"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	StoreDir string `koanf:"store_dir"`

	Stream         string        `koanf:"stream"`
	Subject        string        `koanf:"subject"`
	MaxAge         time.Duration `koanf:"max_age"`
	PublishTimeout time.Duration `koanf:"publish_timeout"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8480,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Security: SecurityConfig{
			JWTIssuer:         "reelgate",
			TokenTTL:          15 * time.Minute,
			HKDFContext:       "reelgate-token-signing-v1",
			PolicyReload:      30 * time.Second,
			RoleCacheTTL:      time.Minute,
			RevocationBackend: "memory",
		},
		Catalog: CatalogConfig{
			Path:         "/data/reelgate/catalog.duckdb",
			ReadOnly:     true,
			QueryTimeout: 5 * time.Second,
		},
		ClipStore: ClipStoreConfig{
			Timeout:            5 * time.Second,
			RequestsPerSecond:  50,
			Burst:              20,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		NATS: NATSConfig{
			URL:                "nats://127.0.0.1:4222",
			Embedded:           false,
			Host:               "127.0.0.1",
			Port:               4222,
			StoreDir:           "/data/reelgate/jetstream",
			Stream:             "ACTIVITY",
			Subject:            "activity.recorded",
			MaxAge:             7 * 24 * time.Hour,
			PublishTimeout:     5 * time.Second,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
