// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	listenErr   error
	shutdownErr error
	shutdown    chan struct{}
	done        chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{shutdown: make(chan struct{}), done: make(chan struct{})}
}

func (s *fakeServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.shutdown
	close(s.done)
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(context.Context) error {
	close(s.shutdown)
	return s.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	server := newFakeServer()
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("service did not stop")
	}
	select {
	case <-server.done:
	default:
		t.Fatal("server was not shut down")
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	server := newFakeServer()
	server.listenErr = errors.New("bind: address already in use")
	svc := NewHTTPService(server, time.Second)

	err := svc.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
}

type fakeRunner struct{ started chan struct{} }

func (r *fakeRunner) Start(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestSchedulerServiceForwardsContext(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{})}
	svc := NewSchedulerService(runner)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	<-runner.started
	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler service did not stop")
	}
}

func TestServiceNames(t *testing.T) {
	assert.Equal(t, "http-server", NewHTTPService(newFakeServer(), 0).String())
	assert.Equal(t, "cron-scheduler", NewSchedulerService(&fakeRunner{}).String())
}
