package repositories

import "errors"

// Sentinel errors surfaced by all repository implementations. Callers match
// them with errors.Is.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)
