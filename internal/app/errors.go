package service

import "errors"

// Sentinel kinds for session errors.
var (
	// ErrSessionNotFound marks an unknown or logged-out session token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrLoginInProgress marks a login attempt made while an earlier one
	// for the same user is still resolving.
	ErrLoginInProgress = errors.New("login already in progress")
)
