package services

import "errors"

// ErrInvalidRequest means the caller sent a malformed or empty cart to
// checkout. It is surfaced synchronously; no call to the payment provider
// is made.
var ErrInvalidRequest = errors.New("invalid checkout request")

// PersistenceError wraps a failed order upsert or stock write. For the
// webhook flow it must fail the whole invocation so the provider redelivers,
// instead of acknowledging success on a lost order record.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence error: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
