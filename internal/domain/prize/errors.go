package prize

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNoEligiblePrize = errors.New("no eligible prize configured")
)
