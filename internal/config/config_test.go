// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the two variables every load needs.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NOTION_TOKEN", "secret-token")
	t.Setenv("DATABASE_ID", "db-12345678-abcd")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Notion.Token != "secret-token" {
		t.Errorf("Token = %q", cfg.Notion.Token)
	}
	if cfg.Notion.Version != "2022-06-28" {
		t.Errorf("Version = %q, want 2022-06-28", cfg.Notion.Version)
	}
	if cfg.Notion.BaseURL != "https://api.notion.com" {
		t.Errorf("BaseURL = %q", cfg.Notion.BaseURL)
	}
	if cfg.Notion.Timeout != 20*time.Second {
		t.Errorf("Timeout = %v, want 20s", cfg.Notion.Timeout)
	}
	if cfg.Notion.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.Notion.PageSize)
	}
	if cfg.XP.Property != "XP" {
		t.Errorf("Property = %q, want XP", cfg.XP.Property)
	}
	if cfg.XP.PointsPerLevel != 200 {
		t.Errorf("PointsPerLevel = %d, want 200", cfg.XP.PointsPerLevel)
	}
	if cfg.Cache.TTLSeconds != 120 {
		t.Errorf("TTLSeconds = %d, want 120", cfg.Cache.TTLSeconds)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Widget.ReloadSeconds != 300 {
		t.Errorf("ReloadSeconds = %d, want 300", cfg.Widget.ReloadSeconds)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", cfg.Server.CORSAllowedOrigins)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", cfg.Server.CORSAllowedOrigins, want)
	}
	for i, origin := range want {
		if cfg.Server.CORSAllowedOrigins[i] != origin {
			t.Errorf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.Server.CORSAllowedOrigins[i], origin)
		}
	}
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "")
	t.Setenv("DATABASE_ID", "db-123")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "NOTION_TOKEN") {
		t.Errorf("error %q does not name NOTION_TOKEN", err)
	}
}

func TestLoadMissingDatabaseID(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "secret")
	t.Setenv("DATABASE_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "DATABASE_ID") {
		t.Errorf("error %q does not name DATABASE_ID", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEVEL_XP", "500")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.XP.PointsPerLevel != 500 {
		t.Errorf("PointsPerLevel = %d, want 500", cfg.XP.PointsPerLevel)
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("TTLSeconds = %d, want 60", cfg.Cache.TTLSeconds)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadSynonymEnvNames(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POINTS_PER_LEVEL", "300")
	t.Setenv("CACHE_TTL_SECONDS", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.XP.PointsPerLevel != 300 {
		t.Errorf("PointsPerLevel = %d, want 300", cfg.XP.PointsPerLevel)
	}
	if cfg.Cache.TTLSeconds != 90 {
		t.Errorf("TTLSeconds = %d, want 90", cfg.Cache.TTLSeconds)
	}
}

func TestLoadInvalidPointsPerLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEVEL_XP", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
}

func TestLoadInvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
}

func TestTTLConversion(t *testing.T) {
	c := CacheConfig{TTLSeconds: 120}
	if got := c.TTL(); got != 2*time.Minute {
		t.Errorf("TTL() = %v, want 2m", got)
	}
}

func TestReloadIntervalConversion(t *testing.T) {
	w := WidgetConfig{ReloadSeconds: 300}
	if got := w.ReloadInterval(); got != 5*time.Minute {
		t.Errorf("ReloadInterval() = %v, want 5m", got)
	}
}

func TestMaskedDatabaseID(t *testing.T) {
	cfg := &Config{Notion: NotionConfig{DatabaseID: "db-12345678-abcd"}}
	masked := cfg.MaskedDatabaseID()
	if masked != "db-12345..." {
		t.Errorf("MaskedDatabaseID() = %q", masked)
	}

	short := &Config{Notion: NotionConfig{DatabaseID: "short"}}
	if got := short.MaskedDatabaseID(); got != "short" {
		t.Errorf("MaskedDatabaseID() = %q, want short", got)
	}
}

func TestEnvTransformIgnoresUnknownVars(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("envTransformFunc(PATH) = %q, want empty", got)
	}
	if got := envTransformFunc("NOTION_TOKEN"); got != "notion.token" {
		t.Errorf("envTransformFunc(NOTION_TOKEN) = %q", got)
	}
}
