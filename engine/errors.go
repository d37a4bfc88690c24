package engine

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when an engine that needs an API key has none.
var ErrMissingCredentials = errors.New("missing credentials")

// Error indicates a backend failure (transport error, non-2xx status, bad payload).
type Error struct {
	Engine     string
	Message    string
	StatusCode int // HTTP status, 0 when the request never completed
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Engine, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
