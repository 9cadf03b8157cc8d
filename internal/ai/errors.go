package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialMissing is returned when no API credential is configured for a provider.
	ErrCredentialMissing = errors.New("api credential is not configured")

	// ErrNoQualifications is returned when there is nothing to judge.
	ErrNoQualifications = errors.New("no qualifications to assess")

	// ErrTransport is returned when the remote service could not be reached or answered with an error status.
	ErrTransport = errors.New("remote service request failed")

	// ErrMalformedResponse is returned when the remote service answered with an unexpected shape.
	ErrMalformedResponse = errors.New("malformed remote service response")
)

// TransportError wraps a failed call to a remote provider.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError creates a new TransportError.
func NewTransportError(provider string, err error) *TransportError {
	return &TransportError{Provider: provider, Err: err}
}

// MalformedResponseError describes a response that could not be turned into scores.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// NewMalformedResponseError creates a new MalformedResponseError.
func NewMalformedResponseError(reason string, err error) *MalformedResponseError {
	return &MalformedResponseError{Reason: reason, Err: err}
}
