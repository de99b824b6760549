package hooks

import "errors"

// CancelError is the designated cancellation signal for filter chains.
// It is not a failure: a filter listener returns (or wraps) a CancelError
// to abort the in-flight host operation. The dispatcher stops the chain
// immediately and propagates the cancellation to the emitting caller,
// which is expected to roll back the operation's transaction.
type CancelError struct {
	// Reason is a human-readable explanation surfaced to the host.
	Reason string
}

// Error implements the error interface.
func (e *CancelError) Error() string {
	if e.Reason == "" {
		return "hooks: operation cancelled"
	}
	return "hooks: operation cancelled: " + e.Reason
}

// Cancel returns a new cancellation signal with the given reason.
// Filter listeners return it to abort the enclosing host operation.
func Cancel(reason string) error {
	return &CancelError{Reason: reason}
}

// IsCancel reports whether err is, or wraps, a cancellation signal.
// The dispatcher recognizes the signal by type identity, never by message.
func IsCancel(err error) bool {
	var ce *CancelError
	return errors.As(err, &ce)
}
