// Package eligibility decides whether a user may start a new game today.
package eligibility

import (
	"time"

	"github.com/okian/raspa/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source. Fixed clocks make resolutions
// reproducible in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithStaleAfter sets how long a cached in-progress record is honored.
func WithStaleAfter(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.staleAfter = d
		}
	}
}

// WithIPResolver sets the client IP collaborator.
func WithIPResolver(r IPResolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.ips = r
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
