// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable holding an explicit
// config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelgate/config.yaml",
}

// Load builds the configuration from defaults, the config file and the
// environment, in that order of precedence, and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// JWT_SECRET -> security.jwt_secret
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, otherwise the first
// existing entry of DefaultConfigPaths, otherwise "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",

	"jwt_secret":         "security.jwt_secret",
	"jwt_issuer":         "security.jwt_issuer",
	"token_ttl":          "security.token_ttl",
	"hkdf_context":       "security.hkdf_context",
	"policy_path":        "security.policy_path",
	"policy_reload":      "security.policy_reload",
	"role_cache_ttl":     "security.role_cache_ttl",
	"revocation_backend": "security.revocation_backend",
	"revocation_path":    "security.revocation_path",

	"catalog_path":          "catalog.path",
	"catalog_read_only":     "catalog.read_only",
	"catalog_query_timeout": "catalog.query_timeout",
	"catalog_bootstrap":     "catalog.bootstrap",

	"clipstore_url":                  "clipstore.base_url",
	"clipstore_timeout":              "clipstore.timeout",
	"clipstore_rps":                  "clipstore.requests_per_second",
	"clipstore_burst":                "clipstore.burst",
	"clipstore_breaker_max_failures": "clipstore.breaker_max_failures",
	"clipstore_breaker_timeout":      "clipstore.breaker_timeout",

	"nats_url":                  "nats.url",
	"nats_embedded":             "nats.embedded",
	"nats_host":                 "nats.host",
	"nats_port":                 "nats.port",
	"nats_store_dir":            "nats.store_dir",
	"nats_stream":               "nats.stream",
	"nats_subject":              "nats.subject",
	"nats_max_age":              "nats.max_age",
	"nats_publish_timeout":      "nats.publish_timeout",
	"nats_breaker_max_failures": "nats.breaker_max_failures",
	"nats_breaker_timeout":      "nats.breaker_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable to its koanf path. Unknown
// variables map to "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
