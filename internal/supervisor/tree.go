// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package supervisor runs the server's long-lived services under a suture
// tree so a crashed service restarts with backoff instead of taking the
// process down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Tree supervises the HTTP server and the cron scheduler.
type Tree struct {
	root *suture.Supervisor
}

// NewTree builds the supervisor tree. Failure parameters are suture's
// defaults; the shutdown timeout bounds how long Stop waits for services.
func NewTree(logger *slog.Logger, shutdownTimeout time.Duration) *Tree {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	// sutureslog's hook is built from a Handler value, not a constructor.
	handler := &sutureslog.Handler{Logger: logger}
	root := suture.New("mediatiger-analytics", suture.Spec{
		EventHook: handler.MustHook(),
		Timeout:   shutdownTimeout,
	})
	return &Tree{root: root}
}

// Add registers a service with the tree.
func (t *Tree) Add(svc suture.Service) {
	t.root.Add(svc)
}

// Serve runs the tree until ctx is cancelled. Blocks.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
