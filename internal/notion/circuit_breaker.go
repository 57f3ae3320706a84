// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

package notion

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gradusapp/gradus/internal/config"
	"github.com/gradusapp/gradus/internal/logging"
	"github.com/gradusapp/gradus/internal/metrics"
)

// BreakerClient wraps Client with a circuit breaker so a misbehaving or
// unreachable Notion API stops consuming the per-request timeout on every
// widget load. While the circuit is open, reads fail fast and the widget
// falls through to its error page immediately.
//
// The breaker uses real time for its interval and timeout calculations.
// Unit tests should exercise the wrapped Client directly.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[[]Page]
	name   string
}

// Ensure BreakerClient implements QueryClient
var _ QueryClient = (*BreakerClient)(nil)

// NewBreakerClient creates a Notion client with circuit breaker protection.
// Configuration:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 4 requests
func NewBreakerClient(cfg *config.NotionConfig) *BreakerClient {
	cbName := "notion-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]Page](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// The widget is the only traffic source, so the minimum request
			// count is low compared to a high-throughput service.
			if counts.Requests < 4 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{
		client: NewClient(cfg),
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps one Notion call with circuit breaker protection.
func (bc *BreakerClient) execute(fn func() ([]Page, error)) ([]Page, error) {
	result, err := bc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "success").Inc()
	return result, nil
}

// QueryAllPages retrieves every database record with breaker protection.
func (bc *BreakerClient) QueryAllPages(ctx context.Context) ([]Page, error) {
	return bc.execute(func() ([]Page, error) {
		return bc.client.QueryAllPages(ctx)
	})
}

// Ping verifies connectivity to the Notion API with breaker protection.
func (bc *BreakerClient) Ping(ctx context.Context) error {
	_, err := bc.execute(func() ([]Page, error) {
		return nil, bc.client.Ping(ctx)
	})
	return err
}

// stateToFloat converts circuit breaker state to a numeric metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
