// Package errors defines the coded error values the core surfaces to the
// UI collaborator. These are status flags, not exceptions: event processing
// recovers from them locally and never lets one propagate across the host's
// event-handling boundary.
package errors

import (
	"fmt"
)

const (
	CodeAuthRequired    = "AUTH_REQUIRED"
	CodeNoDestinations  = "NO_DESTINATIONS"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeTransportFailed = "TRANSPORT_FAILED"
)

var (
	// ErrAuthRequired gates submission before any work is done.
	ErrAuthRequired = New(CodeAuthRequired, "not authenticated: sign in from the plugin panel first")

	// ErrNoDestinations is returned when neither structured destinations nor
	// a legacy server id are configured.
	ErrNoDestinations = New(CodeNoDestinations, "no destinations configured")

	// ErrInvalidConfig marks a destination document that could not be parsed
	// at all. Individually malformed entries are skipped, not surfaced.
	ErrInvalidConfig = New(CodeInvalidConfig, "destination configuration is malformed")
)

type Extras map[string]interface{}

type TrackerError struct {
	ErrorCode string
	Message   string
	Extras    *Extras
}

func New(errorCode string, message string) *TrackerError {
	return &TrackerError{
		ErrorCode: errorCode,
		Message:   message,
	}
}

func (e TrackerError) WithMessage(format string, parts ...interface{}) *TrackerError {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e TrackerError) WithExtras(extras Extras) *TrackerError {
	e.Extras = &extras
	return &e
}

func (e *TrackerError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}
