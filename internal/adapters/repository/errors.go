package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid identifier")
	ErrConflict  = errors.New("duplicate document")
)
