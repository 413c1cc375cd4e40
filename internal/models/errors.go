package models

import "errors"

// Sentinel errors shared by repositories and handlers. Repositories wrap
// these with fmt.Errorf("...: %w", ...) so handlers can map them to HTTP
// statuses with errors.Is.
var (
	// ErrNotFound means a referenced post, comment or notification does not
	// exist or was already deleted.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller is neither the comment's author nor
	// the post's author.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation means a malformed or missing required field was caught
	// at the boundary; the core never ran.
	ErrValidation = errors.New("validation failed")
)
