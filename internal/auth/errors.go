package auth

import "errors"

// Sentinel kinds for token errors.
var (
	ErrInvalidToken = errors.New("invalid token")
)
