package storage

import "errors"

var (
	// ErrStoreUnavailable is returned when the log file cannot be created
	// or opened. Open failures are never retried.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrIO is returned when a read, write, seek, sync, or truncate fails
	// during normal operation. The store remains usable for subsequent
	// calls if the underlying I/O recovers.
	ErrIO = errors.New("i/o failure")

	// ErrInvalidCommand is returned when a record cannot be encoded or
	// decoded. It indicates a corrupt log or a logic bug.
	ErrInvalidCommand = errors.New("invalid command record")

	// ErrCorruptRecord is returned when the index pointed at an offset
	// whose content is not the expected set record. This is an internal
	// invariant violation and is never silently ignored.
	ErrCorruptRecord = errors.New("corrupt record at indexed offset")
)

// KeyNotFoundError is the expected outcome of removing a key that does not
// exist. It is the one user-visible error of the store and is kept distinct
// from all internal failure kinds.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return "key not found: " + e.Key
}

// IsKeyNotFound reports whether err is a KeyNotFoundError.
func IsKeyNotFound(err error) bool {
	var kerr *KeyNotFoundError
	return errors.As(err, &kerr)
}
