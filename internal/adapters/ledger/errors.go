package ledger

import "errors"

// Sentinel kinds for record store errors.
var (
	// ErrStoreUnavailable means a fetch failed: network error, bad status,
	// or a malformed response.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrStoreWriteFailed means an upsert exhausted its retries. Reveal
	// pushes are fire-and-forget, so this is logged, never user-facing.
	ErrStoreWriteFailed = errors.New("record store write failed")
)
