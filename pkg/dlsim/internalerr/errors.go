package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrSyntax           = errors.New("syntax error")
	ErrCyclicDefinition = errors.New("cyclic concept definition")
	ErrStoreUnavailable = errors.New("store unavailable")
)
