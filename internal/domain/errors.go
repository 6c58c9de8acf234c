package domain

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a client lacks credentials or endpoints.
var ErrNotConfigured = errors.New("not configured")

// StatusError reports a non-success HTTP response from an external service.
type StatusError struct {
	Service string
	Code    int
	Status  string
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned %s: %s", e.Service, e.Status, e.Body)
	}
	return fmt.Sprintf("%s returned %s", e.Service, e.Status)
}

// DocumentError is a per-document failure reported by a summarization provider.
type DocumentError struct {
	Code    string
	Message string
}

func (e *DocumentError) Error() string {
	return e.Code + " - " + e.Message
}
