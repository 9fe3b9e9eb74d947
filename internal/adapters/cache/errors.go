package cache

import "errors"

// Sentinel kinds for local state errors.
var (
	// ErrMalformedLocalState marks unparsable cached JSON. It is logged
	// and the value treated as empty; it never propagates to callers.
	ErrMalformedLocalState = errors.New("malformed local state")
)
