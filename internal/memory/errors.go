package memory

import "errors"

// Error kinds with different propagation policies.
//
// ErrMalformedKey and ErrRecallUnavailable are handled where they occur:
// they are logged and the operation returns an empty result. Only
// ErrStoreUnavailable reaches the caller.
var (
	// ErrMalformedKey reports a CompanionKey with a missing field.
	ErrMalformedKey = errors.New("companion key set incorrectly")

	// ErrRecallUnavailable reports an embedding or vector query failure.
	ErrRecallUnavailable = errors.New("similarity recall unavailable")

	// ErrStoreUnavailable reports a failed read or write against the history store.
	ErrStoreUnavailable = errors.New("history store unavailable")
)
