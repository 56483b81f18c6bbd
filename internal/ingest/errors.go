package ingest

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks a document that could not be fetched or was empty.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrTooLarge marks a document larger than the configured size limit.
var ErrTooLarge = errors.New("document too large")

// ParseError reports a structural CSV error.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSourceUnavailable, fmt.Sprintf(format, args...))
}
