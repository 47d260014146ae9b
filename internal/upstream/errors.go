package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned before any network call when an API key is not configured.
	ErrMissingCredential = errors.New("api credential is not configured")

	errCircuitOpen = errors.New("circuit breaker open")
)

// TransportError means no response was received from the upstream service.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for non-success HTTP statuses.
// Reason holds the machine-readable reason from the body, if the service sent one.
type StatusError struct {
	Service string
	Status  int
	Reason  string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s: status %d", e.Service, e.Status)
}

// DecodeError means the response body did not match the expected shape.
type DecodeError struct {
	Service string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Service, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsCircuitOpen reports whether err was caused by an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, errCircuitOpen)
}
