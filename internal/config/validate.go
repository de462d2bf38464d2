// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/reelgate/internal/logging"
)

// MinJWTSecretLength is the minimum accepted length of security.jwt_secret.
const MinJWTSecretLength = 32

// Revocation store backends.
const (
	RevocationMemory = "memory"
	RevocationBadger = "badger"
)

// Validate checks that required configuration is present and valid. It
// reports the first problem found.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateClipStore(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if len(s.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	}
	if s.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if s.HKDFContext == "" {
		return fmt.Errorf("HKDF_CONTEXT is required")
	}
	switch s.RevocationBackend {
	case RevocationMemory:
	case RevocationBadger:
	default:
		return fmt.Errorf("REVOCATION_BACKEND must be %q or %q, got %q",
			RevocationMemory, RevocationBadger, s.RevocationBackend)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	if c.Catalog.ReadOnly && c.Catalog.Bootstrap {
		return fmt.Errorf("CATALOG_BOOTSTRAP requires a writable catalog")
	}
	return nil
}

func (c *Config) validateClipStore() error {
	if c.ClipStore.BaseURL == "" {
		return fmt.Errorf("CLIPSTORE_URL is required")
	}
	u, err := url.Parse(c.ClipStore.BaseURL)
	if err != nil {
		return fmt.Errorf("CLIPSTORE_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CLIPSTORE_URL must use http or https, got %q", u.Scheme)
	}
	if c.ClipStore.RequestsPerSecond <= 0 {
		return fmt.Errorf("CLIPSTORE_RPS must be positive")
	}
	if c.ClipStore.Burst < 1 {
		return fmt.Errorf("CLIPSTORE_BURST must be at least 1")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Embedded && c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required unless NATS_EMBEDDED=true")
	}
	if c.NATS.Stream == "" || c.NATS.Subject == "" {
		return fmt.Errorf("NATS_STREAM and NATS_SUBJECT are required")
	}
	if c.NATS.PublishTimeout <= 0 {
		return fmt.Errorf("NATS_PUBLISH_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
