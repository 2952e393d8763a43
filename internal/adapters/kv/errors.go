package kv

import "errors"

// Error kinds returned by the key-value backends.
var (
	ErrUnknownBackend   = errors.New("unknown storage backend")
	ErrClosed           = errors.New("store is closed")
	ErrBatchUnsupported = errors.New("store does not support batched writes")
)
