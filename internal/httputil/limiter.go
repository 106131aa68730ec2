// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across pipeline stages.
package httputil

import (
	"context"
	"time"
)

// Limiter enforces a fixed minimum delay between consecutive operations.
// The delay is a constant, not adaptive: the upstream API's usage policy
// asks for a bounded request rate, not backoff. Limiter is not safe for
// concurrent use; the pipeline is single-threaded by design.
type Limiter struct {
	interval time.Duration
	last     time.Time
}

// NewLimiter returns a Limiter with the given minimum interval. A zero or
// negative interval disables waiting.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous Wait returned. The first call never blocks. Wait returns early
// with ctx.Err() if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}

	now := time.Now()
	if !l.last.IsZero() {
		if remaining := l.interval - now.Sub(l.last); remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(remaining):
			}
		}
	}

	l.last = time.Now()
	return nil
}
