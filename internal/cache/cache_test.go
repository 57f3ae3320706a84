// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gradusapp/gradus/internal/notion"
)

// fakeFetcher counts calls and returns a scripted result.
type fakeFetcher struct {
	calls int
	pages []notion.Page
	err   error
}

func (f *fakeFetcher) QueryAllPages(ctx context.Context) ([]notion.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func somePages(ids ...string) []notion.Page {
	pages := make([]notion.Page, 0, len(ids))
	for _, id := range ids {
		pages = append(pages, notion.Page{ID: id})
	}
	return pages
}

func TestPagesFetchesOnFirstRead(t *testing.T) {
	fetcher := &fakeFetcher{pages: somePages("a", "b")}
	c := NewSnapshotCache(fetcher, 2*time.Minute)

	pages, err := c.Pages(context.Background())
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("len(pages) = %d, want 2", len(pages))
	}
	if fetcher.calls != 1 {
		t.Errorf("calls = %d, want 1", fetcher.calls)
	}
}

func TestPagesServedFromCacheWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{pages: somePages("a")}
	c := NewSnapshotCache(fetcher, 2*time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	if _, err := c.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() error = %v", err)
	}

	// One second short of the TTL, still fresh
	now = now.Add(2*time.Minute - time.Second)
	if _, err := c.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() error = %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("calls = %d, want 1 (second read must hit the cache)", fetcher.calls)
	}
}

func TestPagesRefetchesAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{pages: somePages("a")}
	c := NewSnapshotCache(fetcher, 2*time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	if _, err := c.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() error = %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() error = %v", err)
	}

	if fetcher.calls != 2 {
		t.Errorf("calls = %d, want 2 (TTL expiry must refetch)", fetcher.calls)
	}
}

func TestPagesErrorPropagatesAndPreservesSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{pages: somePages("a")}
	c := NewSnapshotCache(fetcher, 2*time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	if _, err := c.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() error = %v", err)
	}

	// Expire the snapshot, then break the upstream
	now = now.Add(3 * time.Minute)
	upstreamErr := errors.New("upstream down")
	fetcher.err = upstreamErr

	_, err := c.Pages(context.Background())
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("Pages() error = %v, want %v", err, upstreamErr)
	}

	// Recovery: the next successful fetch replaces the snapshot
	fetcher.err = nil
	fetcher.pages = somePages("a", "b")

	pages, err := c.Pages(context.Background())
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("len(pages) = %d, want 2 after recovery", len(pages))
	}
}

func TestPagesEmptySnapshotIsNotCached(t *testing.T) {
	fetcher := &fakeFetcher{pages: nil}
	c := NewSnapshotCache(fetcher, 2*time.Minute)

	if _, err := c.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	if _, err := c.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() error = %v", err)
	}

	if fetcher.calls != 2 {
		t.Errorf("calls = %d, want 2 (empty result must not be cached)", fetcher.calls)
	}
}

func TestPagesZeroTTLAlwaysRefetches(t *testing.T) {
	fetcher := &fakeFetcher{pages: somePages("a")}
	c := NewSnapshotCache(fetcher, 0)

	for i := 0; i < 3; i++ {
		if _, err := c.Pages(context.Background()); err != nil {
			t.Fatalf("Pages() error = %v", err)
		}
	}

	if fetcher.calls != 3 {
		t.Errorf("calls = %d, want 3", fetcher.calls)
	}
}
