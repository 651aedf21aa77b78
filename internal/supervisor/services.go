// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mediatiger/analytics/internal/logging"
)

// HTTPServer matches *http.Server's lifecycle so tests can substitute a
// fake.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts an http.Server's blocking ListenAndServe to suture's
// context-driven Serve: the server runs in a goroutine and context
// cancellation triggers a bounded graceful shutdown.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPService wraps a server for supervision.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. http.ErrServerClosed is the expected
// outcome of a graceful shutdown and maps to nil.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *HTTPService) String() string { return "http-server" }

// SchedulerRunner is the cron loop surface. Satisfied by *scheduler.Job.
type SchedulerRunner interface {
	Start(ctx context.Context) error
}

// SchedulerService runs the cron job loop under supervision.
type SchedulerService struct {
	job SchedulerRunner
}

// NewSchedulerService wraps the cron job for supervision.
func NewSchedulerService(job SchedulerRunner) *SchedulerService {
	return &SchedulerService{job: job}
}

// Serve implements suture.Service.
func (s *SchedulerService) Serve(ctx context.Context) error {
	return s.job.Start(ctx)
}

func (s *SchedulerService) String() string { return "cron-scheduler" }
