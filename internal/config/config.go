// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

// Package config loads and validates the Gradus configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the Gradus server.
type Config struct {
	Notion  NotionConfig  `koanf:"notion"`
	XP      XPConfig      `koanf:"xp"`
	Cache   CacheConfig   `koanf:"cache"`
	Widget  WidgetConfig  `koanf:"widget"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// NotionConfig configures the upstream Notion API client.
type NotionConfig struct {
	// Token is the integration token sent as a bearer credential.
	Token string `koanf:"token" validate:"required"`

	// DatabaseID identifies the database to query.
	DatabaseID string `koanf:"database_id" validate:"required"`

	// Version is the Notion-Version header value.
	Version string `koanf:"version" validate:"required"`

	// BaseURL is the API origin. Overridable for tests.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Timeout bounds each individual query request.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// PageSize is the page_size sent with each query request.
	PageSize int `koanf:"page_size" validate:"gte=1,lte=100"`
}

// XPConfig configures the experience-point computation.
type XPConfig struct {
	// Property is the database property that carries XP values.
	Property string `koanf:"property" validate:"required"`

	// PointsPerLevel is the fixed divisor converting total XP into a level.
	PointsPerLevel int `koanf:"points_per_level" validate:"gte=1"`
}

// CacheConfig configures the snapshot freshness cache.
type CacheConfig struct {
	// TTLSeconds is the maximum snapshot age before a re-fetch.
	// Zero disables reuse entirely (every read re-fetches).
	TTLSeconds int `koanf:"ttl_seconds" validate:"gte=0"`
}

// TTL returns the snapshot time-to-live as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// WidgetConfig configures the rendered widget page.
type WidgetConfig struct {
	// Title is shown above the ring gauge.
	Title string `koanf:"title" validate:"required"`

	// ReloadSeconds is the client-side page reload interval.
	ReloadSeconds int `koanf:"reload_seconds" validate:"gte=1"`
}

// ReloadInterval returns the client reload interval as a duration.
func (c WidgetConfig) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadSeconds) * time.Second
}

// ServerConfig configures the inbound HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// CORSAllowedOrigins lists the origins allowed to fetch the endpoints
	// cross-origin. The surface is public read-only data, so the default is
	// the wildcard; narrow it when the widget carries anything sensitive.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"min=1"`
}

// LoggingConfig configures the zerolog pipeline.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration at startup. A failure here is fatal:
// the process must not start with an incomplete upstream credential or a
// nonsensical level divisor.
func (c *Config) Validate() error {
	// The two credentials get explicit messages since they are the values
	// operators most commonly forget to set.
	if c.Notion.Token == "" {
		return errors.New("NOTION_TOKEN is required")
	}
	if c.Notion.DatabaseID == "" {
		return errors.New("DATABASE_ID is required")
	}

	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s fails %q (value %v)",
				fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// MaskedDatabaseID returns a display-safe form of the database identifier
// for startup logs.
func (c *Config) MaskedDatabaseID() string {
	id := c.Notion.DatabaseID
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
