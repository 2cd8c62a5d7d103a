package quiz

import "errors"

// Error taxonomy shared by every core operation. The HTTP layer maps
// these to status codes; the core never panics on bad references.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
