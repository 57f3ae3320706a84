// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/gradusapp/gradus/internal/config"
)

func testConfig(baseURL string) *config.NotionConfig {
	return &config.NotionConfig{
		Token:      "secret-token",
		DatabaseID: "db-123",
		Version:    "2022-06-28",
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		PageSize:   100,
	}
}

func TestQueryAllPagesSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/databases/db-123/query" {
			t.Errorf("path = %s, want /v1/databases/db-123/query", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != "2022-06-28" {
			t.Errorf("Notion-Version = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if got := req["page_size"].(float64); got != 100 {
			t.Errorf("page_size = %v, want 100", got)
		}
		if _, present := req["start_cursor"]; present {
			t.Error("start_cursor sent on first request")
		}

		fmt.Fprint(w, `{"results":[{"id":"a"},{"id":"b"}],"has_more":false,"next_cursor":null}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	pages, err := client.QueryAllPages(context.Background())
	if err != nil {
		t.Fatalf("QueryAllPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("len(pages) = %d, want 2", len(pages))
	}
	if pages[0].ID != "a" || pages[1].ID != "b" {
		t.Errorf("unexpected pages: %+v", pages)
	}
}

func TestQueryAllPagesPagination(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		switch calls {
		case 1:
			fmt.Fprint(w, `{"results":[{"id":"a"}],"has_more":true,"next_cursor":"cur-2"}`)
		case 2:
			if got := req["start_cursor"]; got != "cur-2" {
				t.Errorf("start_cursor = %v, want cur-2", got)
			}
			fmt.Fprint(w, `{"results":[{"id":"b"}],"has_more":false,"next_cursor":null}`)
		default:
			t.Errorf("unexpected call %d", calls)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	pages, err := client.QueryAllPages(context.Background())
	if err != nil {
		t.Fatalf("QueryAllPages() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(pages) != 2 {
		t.Errorf("len(pages) = %d, want 2", len(pages))
	}
}

// has_more true with a null cursor must terminate rather than loop.
func TestQueryAllPagesHasMoreWithoutCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":"a"}],"has_more":true,"next_cursor":null}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	pages, err := client.QueryAllPages(context.Background())
	if err != nil {
		t.Fatalf("QueryAllPages() error = %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("len(pages) = %d, want 1", len(pages))
	}
}

func TestQueryAllPagesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"object":"error","status":401,"code":"unauthorized"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.QueryAllPages(context.Background())
	if err == nil {
		t.Fatal("QueryAllPages() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q does not mention status 401", err)
	}
}

func TestQueryAllPagesMidPaginationFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"results":[{"id":"a"}],"has_more":true,"next_cursor":"cur-2"}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	pages, err := client.QueryAllPages(context.Background())
	if err == nil {
		t.Fatal("QueryAllPages() error = nil, want error")
	}
	if pages != nil {
		t.Errorf("pages = %v, want nil on partial failure", pages)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (no retries)", calls)
	}
}

func TestQueryAllPagesDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.QueryAllPages(context.Background()); err == nil {
		t.Fatal("QueryAllPages() error = nil, want decode error")
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if got := req["page_size"].(float64); got != 1 {
			t.Errorf("page_size = %v, want 1", got)
		}
		fmt.Fprint(w, `{"results":[],"has_more":false,"next_cursor":null}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestPingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ping() error = nil, want error")
	}
}

func TestBreakerClientPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":"a"}],"has_more":false,"next_cursor":null}`)
	}))
	defer server.Close()

	client := NewBreakerClient(testConfig(server.URL))
	pages, err := client.QueryAllPages(context.Background())
	if err != nil {
		t.Fatalf("QueryAllPages() error = %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("len(pages) = %d, want 1", len(pages))
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestBreakerClientPropagatesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewBreakerClient(testConfig(server.URL))
	if _, err := client.QueryAllPages(context.Background()); err == nil {
		t.Error("QueryAllPages() error = nil, want error")
	}
}
