// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LedgerURL points at the remote spreadsheet-style record store.
	LedgerURL string `koanf:"ledger_url"`

	// LedgerTimeoutMS bounds a single ledger round trip.
	LedgerTimeoutMS int `koanf:"ledger_timeout_ms"`

	// LedgerPushRetries sets how often a failed upsert is retried by the client.
	LedgerPushRetries int `koanf:"ledger_push_retries"`

	// PushQueueSize bounds the in-memory fire-and-forget push queue.
	PushQueueSize int `koanf:"push_queue_size"`

	// PushWorkerCount sets the number of push workers draining the queue.
	PushWorkerCount int `koanf:"push_worker_count"`

	// CachePath is the directory holding the local key-value state.
	CachePath string `koanf:"cache_path"`

	// CacheStaleHours bounds how long a cached unscratched game survives.
	CacheStaleHours int `koanf:"cache_stale_hours"`

	// SurfaceWidth and SurfaceHeight size the scratch surface in grid units.
	SurfaceWidth  int `koanf:"surface_width"`
	SurfaceHeight int `koanf:"surface_height"`

	// ScratchRadius is the radius of the disk cleared per scratch sample.
	ScratchRadius int `koanf:"scratch_radius"`

	// RevealThresholdPct is the uncovered percentage past which a reveal fires.
	RevealThresholdPct float64 `koanf:"reveal_threshold_pct"`

	// PrizeCatalog is the fallback prize list when no cached catalog exists.
	PrizeCatalog []int `koanf:"prize_catalog"`

	// DefaultPrize is awarded when the catalog is empty or unavailable.
	DefaultPrize int `koanf:"default_prize"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		LedgerURL:          "http://localhost:9090/rows",
		LedgerTimeoutMS:    5_000,
		LedgerPushRetries:  3,
		PushQueueSize:      1_024,
		PushWorkerCount:    2,
		CachePath:          "data",
		CacheStaleHours:    8,
		SurfaceWidth:       300,
		SurfaceHeight:      220,
		ScratchRadius:      20,
		RevealThresholdPct: 40,
		PrizeCatalog:       []int{38, 58, 88},
		DefaultPrize:       38,
	}
	return c
}
