// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

// Package cache provides a TTL freshness cache over the upstream record
// snapshot so widget reloads do not hammer the Notion API.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradusapp/gradus/internal/logging"
	"github.com/gradusapp/gradus/internal/metrics"
	"github.com/gradusapp/gradus/internal/notion"
)

// Fetcher retrieves the full record set from upstream.
type Fetcher interface {
	QueryAllPages(ctx context.Context) ([]notion.Page, error)
}

// Snapshot is one complete upstream result with its capture time.
type Snapshot struct {
	Pages      []notion.Page
	CapturedAt time.Time
}

// SnapshotCache holds at most one snapshot and refreshes it when it is
// older than the TTL. Refreshes are serialized: concurrent readers that
// arrive while the snapshot is stale share a single upstream fetch instead
// of racing each other.
//
// The snapshot is only ever replaced wholesale on a successful fetch. A
// failed refresh leaves the previous snapshot in place untouched, but a
// stale snapshot is never served: the read that triggered the failed
// refresh propagates the error to its caller.
type SnapshotCache struct {
	mu      sync.Mutex
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	snap    *Snapshot
	log     zerolog.Logger
}

// NewSnapshotCache creates an empty cache over the given fetcher.
func NewSnapshotCache(fetcher Fetcher, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		log:     logging.WithComponent("cache"),
	}
}

// Pages returns the cached record set, refreshing from upstream when the
// snapshot is absent, empty, or older than the TTL.
//
// An empty snapshot is treated as absent and re-fetched on every read; a
// database that legitimately has zero records costs one upstream call per
// widget load, which is acceptable for the degenerate case.
func (c *SnapshotCache) Pages(ctx context.Context) ([]notion.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.snap != nil && len(c.snap.Pages) > 0 && now.Sub(c.snap.CapturedAt) < c.ttl {
		metrics.SnapshotCacheHits.Inc()
		metrics.SnapshotAge.Set(now.Sub(c.snap.CapturedAt).Seconds())
		return c.snap.Pages, nil
	}

	metrics.SnapshotCacheMisses.Inc()

	pages, err := c.fetcher.QueryAllPages(ctx)
	if err != nil {
		metrics.SnapshotRefreshErrors.Inc()
		c.log.Error().Err(err).Msg("Snapshot refresh failed")
		return nil, err
	}

	c.snap = &Snapshot{Pages: pages, CapturedAt: c.now()}
	metrics.SnapshotAge.Set(0)
	c.log.Debug().Int("pages", len(pages)).Msg("Snapshot refreshed")

	return c.snap.Pages, nil
}
