// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gradus/config.yaml",
	"/etc/gradus/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Notion: NotionConfig{
			Token:      "",
			DatabaseID: "",
			Version:    "2022-06-28",
			BaseURL:    "https://api.notion.com",
			Timeout:    20 * time.Second,
			PageSize:   100,
		},
		XP: XPConfig{
			Property:       "XP",
			PointsPerLevel: 200,
		},
		Cache: CacheConfig{
			TTLSeconds: 120,
		},
		Widget: WidgetConfig{
			Title:         "Level progress",
			ReloadSeconds: 300,
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               5000,
			Timeout:            30 * time.Second,
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			CORSAllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources and validates it:
//  1. Defaults: built-in values above
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variable names are mapped to koanf paths:
	// NOTION_TOKEN -> notion.token, LEVEL_XP -> xp.points_per_level, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
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

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return empty string and are skipped, which keeps
// unrelated environment noise out of the configuration.
//
// LEVEL_XP and CACHE_TTL are the names the original deployment used;
// POINTS_PER_LEVEL and CACHE_TTL_SECONDS are accepted as synonyms.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Notion upstream
		"notion_token":     "notion.token",
		"database_id":      "notion.database_id",
		"notion_version":   "notion.version",
		"notion_base_url":  "notion.base_url",
		"notion_timeout":   "notion.timeout",
		"notion_page_size": "notion.page_size",

		// XP computation
		"xp_property":      "xp.property",
		"level_xp":         "xp.points_per_level",
		"points_per_level": "xp.points_per_level",

		// Snapshot cache
		"cache_ttl":         "cache.ttl_seconds",
		"cache_ttl_seconds": "cache.ttl_seconds",

		// Widget page
		"widget_title":          "widget.title",
		"widget_reload_seconds": "widget.reload_seconds",

		// HTTP server
		"http_host":            "server.host",
		"http_port":            "server.port",
		"http_timeout":         "server.timeout",
		"rate_limit_requests":  "server.rate_limit_reqs",
		"rate_limit_window":    "server.rate_limit_window",
		"disable_rate_limit":   "server.rate_limit_disabled",
		"cors_allowed_origins": "server.cors_allowed_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
