package store

import "errors"

// Sentinel errors every Store operation wraps with fmt.Errorf("%w", ...)
// so callers can errors.Is/errors.As against a small fixed set.
var (
	ErrNotFound           = errors.New("store: not found")
	ErrClosed             = errors.New("store: closed")
	ErrUnknownCategory    = errors.New("store: unknown category")
	ErrUnknownResolution  = errors.New("store: unknown resolution")
)
