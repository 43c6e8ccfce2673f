package game

import "errors"

// Error taxonomy roots. Specific failures across the engine and arena
// packages wrap exactly one of these so callers (HTTP handlers, tests) can
// classify with errors.Is without depending on message text.
var (
	ErrAuthorization = errors.New("not authorized")
	ErrState         = errors.New("invalid state")
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
)
