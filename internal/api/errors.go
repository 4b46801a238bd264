package api

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by Client matches exactly one of the
// first five through errors.Is.
var (
	// ErrNetwork means no response was received.
	ErrNetwork = errors.New("network failure")
	// ErrAuthRejected is a 401/403 or refused credentials.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrValidationRejected is any other non-2xx answer.
	ErrValidationRejected = errors.New("request rejected")
	// ErrMalformedResponse is a 2xx whose body is not the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNotFound is a 404 on a referenced entity.
	ErrNotFound = errors.New("not found")
)

// Operation-specific kinds. Each wraps one of the kinds above.
var (
	ErrInvalidCredentials   = fmt.Errorf("invalid credentials: %w", ErrAuthRejected)
	ErrMissingToken         = fmt.Errorf("response carries no token: %w", ErrMalformedResponse)
	ErrRegistrationRejected = fmt.Errorf("registration rejected: %w", ErrValidationRejected)
)

// Error describes a failed backend call.
type Error struct {
	Op      string // e.g. "auth.login"
	Kind    error  // one of the Err* kinds
	Status  int    // HTTP status, 0 when no response arrived
	Message string // user-facing text, from the backend when it sent one
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches e against its kind, so errors.Is(err, ErrAuthRejected) holds
// for an ErrInvalidCredentials failure.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}

// Message returns the text a form or toast should show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func kindForStatus(status int) error {
	switch status {
	case 401, 403:
		return ErrAuthRejected
	case 404:
		return ErrNotFound
	default:
		return ErrValidationRejected
	}
}
