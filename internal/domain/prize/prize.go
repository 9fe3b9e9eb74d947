// Package prize defines the contract for drawing prizes from the active catalog.
package prize

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/raspa/pkg/logger"
	"github.com/okian/raspa/pkg/metrics"
)

// Default catalog configuration constants.
const (
	// DefaultPrize is awarded when no catalog entry is available.
	DefaultPrize = 38
)

// Store reads and writes the locally cached prize catalog.
// The cache adapter provides the durable implementation.
type Store interface {
	// Prizes returns the cached catalog, or ok=false when absent.
	Prizes(ctx context.Context) ([]int, bool)

	// PutPrizes replaces the cached catalog.
	PutPrizes(ctx context.Context, prizes []int) error
}

// Catalog exposes the active prize list and uniform draws from it.
type Catalog interface {
	// Current returns the active, ordered prize list. May be empty.
	Current(ctx context.Context) []int

	// Draw picks one prize uniformly at random. An empty or unavailable
	// catalog falls back to the fixed default rather than failing.
	Draw(ctx context.Context) int
}

// CachedCatalog implements Catalog over the local catalog cache with a
// configured fallback list.
type CachedCatalog struct {
	store        Store
	fallback     []int
	defaultPrize int

	// rng guarded by mu; *rand.Rand is not safe for concurrent use.
	mu  sync.Mutex
	rng *rand.Rand

	logger logger.Logger
}

// NewCachedCatalog creates a catalog with configuration options.
func NewCachedCatalog(opts ...Option) *CachedCatalog {
	c := &CachedCatalog{
		defaultPrize: DefaultPrize,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // promotional draw, not crypto
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("prize")
	}

	return c
}

// Current returns the cached catalog when present, otherwise the fallback.
func (c *CachedCatalog) Current(ctx context.Context) []int {
	if c.store != nil {
		if prizes, ok := c.store.Prizes(ctx); ok && len(prizes) > 0 {
			return prizes
		}
	}
	return c.fallback
}

// Draw picks one prize uniformly at random from the current catalog.
func (c *CachedCatalog) Draw(ctx context.Context) int {
	prizes := c.Current(ctx)
	if len(prizes) == 0 {
		metrics.RecordCatalogFallback()
		c.logger.Warn(ctx, "no eligible prize configured, using default",
			logger.Error(ErrNoEligiblePrize),
			logger.Int("default", c.defaultPrize),
		)
		return c.defaultPrize
	}

	c.mu.Lock()
	idx := c.rng.Intn(len(prizes))
	c.mu.Unlock()

	metrics.RecordPrizeDraw()
	return prizes[idx]
}

// Refresh replaces the cached catalog with a freshly fetched list.
// Called by surrounding logic when the upstream catalog changes.
func (c *CachedCatalog) Refresh(ctx context.Context, prizes []int) error {
	if c.store == nil || len(prizes) == 0 {
		return nil
	}
	return c.store.PutPrizes(ctx, prizes)
}
