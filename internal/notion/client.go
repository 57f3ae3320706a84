// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

/*
client.go - Notion REST API Client

This file implements the client for the Notion database query endpoint.
It retrieves every record of one database through cursor-based pagination.

API Reference: https://developers.notion.com/reference/post-database-query
*/

package notion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/gradusapp/gradus/internal/config"
	"github.com/gradusapp/gradus/internal/metrics"
)

// QueryClient defines the interface for Notion database query operations.
// Both Client and BreakerClient implement this interface.
type QueryClient interface {
	Ping(ctx context.Context) error
	QueryAllPages(ctx context.Context) ([]Page, error)
}

// Ensure Client implements QueryClient
var _ QueryClient = (*Client)(nil)

// Client provides access to the Notion database query API.
type Client struct {
	baseURL    string
	token      string
	databaseID string
	version    string
	pageSize   int
	httpClient *http.Client
}

// queryRequest is the body of a database query call. StartCursor is only
// sent on continuation calls.
type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// queryResponse is the subset of the query response this system consumes.
type queryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// NewClient creates a new Notion API client.
//
// The per-request timeout bounds each individual page fetch, not the whole
// pagination loop; a database large enough to need many pages gets the
// timeout budget per page.
func NewClient(cfg *config.NotionConfig) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		version:    cfg.Version,
		pageSize:   cfg.PageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// QueryAllPages retrieves every record of the configured database.
//
// Pages are fetched with the configured page_size and accumulated until the
// response reports no further pages (has_more false or next_cursor absent).
// There are no retries: a single failed page fetch aborts the whole
// retrieval and the error propagates, leaving any caller-side cache
// untouched.
func (c *Client) QueryAllPages(ctx context.Context) ([]Page, error) {
	var pages []Page
	cursor := ""

	for {
		resp, err := c.queryPage(ctx, c.pageSize, cursor)
		if err != nil {
			return nil, err
		}

		pages = append(pages, resp.Results...)
		metrics.UpstreamPagesFetched.Add(float64(len(resp.Results)))

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	return pages, nil
}

// Ping verifies connectivity and credentials by requesting a single record.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.queryPage(ctx, 1, ""); err != nil {
		return fmt.Errorf("notion ping failed: %w", err)
	}
	return nil
}

// queryPage performs one POST to the database query endpoint.
func (c *Client) queryPage(ctx context.Context, pageSize int, cursor string) (*queryResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)

	body, err := json.Marshal(queryRequest{PageSize: pageSize, StartCursor: cursor})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestErrors.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("notion query request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestErrors.WithLabelValues("status").Inc()
		// Notion error bodies are short JSON objects; cap the read anyway.
		excerpt, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		if readErr != nil {
			return nil, fmt.Errorf("notion query returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("notion query returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.UpstreamRequestErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("failed to decode notion query response: %w", err)
	}

	return &out, nil
}
