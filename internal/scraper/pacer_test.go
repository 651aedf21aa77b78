// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerFirstWaitImmediate(t *testing.T) {
	p := NewPacer(time.Hour)
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacerSpacesRequests(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)
	require.NoError(t, p.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPacerCancellation(t *testing.T) {
	p := NewPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Wait(ctx)
	require.Error(t, err, "second permit is an hour out; the wait must abort with the context")
}

func TestZeroDelayPacer(t *testing.T) {
	p := NewPacer(0)
	for range 3 {
		require.NoError(t, p.Wait(context.Background()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}
