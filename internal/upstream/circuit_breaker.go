// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package upstream

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mediatiger/analytics/internal/logging"
	"github.com/mediatiger/analytics/internal/metrics"
)

// CircuitBreakerClient wraps Client with a circuit breaker so a dead or slow
// analytics API stops consuming scrape time instead of timing out channel by
// channel. The breaker uses real wall-clock time; unit tests exercise the
// wrapped Client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates an analytics API client with circuit breaker.
// The circuit opens after a 60% failure rate over at least 10 requests,
// resets counts every minute while closed, and waits 2 minutes before
// probing again once open.
func NewCircuitBreakerClient(client *Client) *CircuitBreakerClient {
	cbName := "analytics-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening upstream circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("Upstream circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: cbName}
}

// BaseURL returns the wrapped client's base URL.
func (c *CircuitBreakerClient) BaseURL() string {
	return c.client.BaseURL()
}

// FetchRange fetches a channel range through the circuit breaker.
func (c *CircuitBreakerClient) FetchRange(ctx context.Context, channel, startDate, endDate string) (*RangeData, error) {
	result, err := c.execute("range", func() (interface{}, error) {
		return c.client.FetchRange(ctx, channel, startDate, endDate)
	})
	if err != nil {
		return nil, err
	}
	return result.(*RangeData), nil
}

// ListChannels fetches the channel list through the circuit breaker.
func (c *CircuitBreakerClient) ListChannels(ctx context.Context) ([]Channel, error) {
	result, err := c.execute("channels", func() (interface{}, error) {
		return c.client.ListChannels(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Channel), nil
}

// execute runs one upstream call through the breaker, recording outcome metrics.
func (c *CircuitBreakerClient) execute(endpoint string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.UpstreamRequests.WithLabelValues(endpoint, "rejected").Inc()
		logging.Warn().Err(err).Str("endpoint", endpoint).Msg("Upstream request rejected by circuit breaker")
		return nil, err
	default:
		metrics.UpstreamRequests.WithLabelValues(endpoint, "failure").Inc()
		return nil, err
	}
}

func stateToString(s gobreaker.State) string {
	switch s {
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

func stateToFloat(s gobreaker.State) float64 {
	switch s {
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
