package llm

import "errors"

// Completion failures fall into two classes. Transient failures (rate
// limits, server errors, network problems) are worth retrying; fatal
// failures (bad requests, auth problems) are not.

// TransientError marks a failure that may succeed on retry.
type TransientError struct {
	err error
}

// NewTransientError wraps err as retryable.
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

func (e *TransientError) Error() string { return e.err.Error() }

func (e *TransientError) Unwrap() error { return e.err }

// FatalError marks a failure that retrying cannot fix.
type FatalError struct {
	err error
}

// NewFatalError wraps err as non-retryable.
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

func (e *FatalError) Error() string { return e.err.Error() }

func (e *FatalError) Unwrap() error { return e.err }

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal reports whether err is classified as non-retryable.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
