// Package prize defines the contract for drawing prizes from the active catalog.
package prize

import (
	"math/rand"

	"github.com/okian/raspa/pkg/logger"
)

// Option applies a configuration option to the CachedCatalog.
type Option func(*CachedCatalog)

// WithStore sets the durable catalog cache.
func WithStore(store Store) Option {
	return func(c *CachedCatalog) {
		c.store = store
	}
}

// WithFallback sets the catalog used when the cache is empty or absent.
func WithFallback(prizes []int) Option {
	return func(c *CachedCatalog) {
		if len(prizes) > 0 {
			c.fallback = append([]int(nil), prizes...)
		}
	}
}

// WithDefaultPrize sets the prize awarded when no catalog entry exists.
func WithDefaultPrize(prize int) Option {
	return func(c *CachedCatalog) {
		if prize > 0 {
			c.defaultPrize = prize
		}
	}
}

// WithRand sets the random source used for draws. Deterministic sources
// make draws reproducible in tests.
func WithRand(rng *rand.Rand) Option {
	return func(c *CachedCatalog) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithLogger sets a custom logger for the catalog.
func WithLogger(l logger.Logger) Option {
	return func(c *CachedCatalog) {
		if l != nil {
			c.logger = l
		}
	}
}
