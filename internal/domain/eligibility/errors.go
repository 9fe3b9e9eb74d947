package eligibility

import "errors"

// Sentinel kinds for eligibility errors.
var (
	ErrInvalidUsername = errors.New("invalid username")
)
