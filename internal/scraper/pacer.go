// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package scraper

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces sequential upstream requests. Wait blocks until the next
// request may be sent or the context is cancelled.
type Pacer interface {
	Wait(ctx context.Context) error
}

type ratePacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer allowing one request per delay. The first Wait
// returns immediately; each subsequent Wait blocks until the delay has
// elapsed since the previous one. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) Pacer {
	if delay <= 0 {
		return nopPacer{}
	}
	return &ratePacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

func (p *ratePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

type nopPacer struct{}

func (nopPacer) Wait(ctx context.Context) error { return ctx.Err() }
