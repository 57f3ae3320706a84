// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

// Package api provides the HTTP handlers and Chi routing for Gradus.
package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/gradusapp/gradus/internal/config"
	"github.com/gradusapp/gradus/internal/logging"
	"github.com/gradusapp/gradus/internal/metrics"
	"github.com/gradusapp/gradus/internal/notion"
	"github.com/gradusapp/gradus/internal/widget"
	"github.com/gradusapp/gradus/internal/xp"
)

// PageSource supplies the current record set. In production this is the
// snapshot cache; tests substitute fakes.
type PageSource interface {
	Pages(ctx context.Context) ([]notion.Page, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	source   PageSource
	renderer *widget.Renderer
	cfg      *config.Config
}

// NewHandler creates a new Handler.
func NewHandler(source PageSource, renderer *widget.Renderer, cfg *config.Config) *Handler {
	return &Handler{
		source:   source,
		renderer: renderer,
		cfg:      cfg,
	}
}

// Health handles GET /health. It reports process liveness only and never
// touches the upstream API, so a Notion outage does not flap monitoring.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Widget handles GET /. It aggregates XP across the current snapshot and
// renders the ring gauge, or the error page when the snapshot cannot be
// retrieved.
func (h *Handler) Widget(w http.ResponseWriter, r *http.Request) {
	pages, err := h.source.Pages(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	total := xp.Sum(pages, h.cfg.XP.Property)
	level, _, percent := xp.Progress(total, h.cfg.XP.PointsPerLevel)

	// Render into a buffer first so a template failure can still produce
	// a clean 500 instead of a half-written 200.
	var buf bytes.Buffer
	err = h.renderer.Widget(&buf, widget.Progress{
		Total:          total,
		Level:          level,
		Percent:        percent,
		PointsPerLevel: h.cfg.XP.PointsPerLevel,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	metrics.WidgetRenders.WithLabelValues("success").Inc()
	logging.Ctx(r.Context()).Debug().
		Float64("total_xp", total).
		Int("level", level).
		Float64("percent", percent).
		Msg("Widget rendered")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// renderError writes the widget error page with status 500. The upstream
// error message is shown verbatim so the embed itself tells the operator
// what broke. Cache suppression comes from the route's NoCache middleware,
// identical for success and error responses.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	metrics.WidgetRenders.WithLabelValues("error").Inc()
	logging.CtxErr(r.Context(), err).Msg("Widget render failed")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)

	if renderErr := h.renderer.Error(w, err.Error()); renderErr != nil {
		logging.CtxErr(r.Context(), renderErr).Msg("Error page render failed")
	}
}

// respondJSON writes a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
