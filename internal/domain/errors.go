package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidBooking = errors.New("invalid booking")
)

// TransportError wraps a failed collaborator call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a sub-document that does not match its schema.
// Part is one of "version", "general", "photos", "amenities", "rules".
type DecodeError struct {
	Part string
	Err  error
}

func (e *DecodeError) Error() string { return "decode " + e.Part + ": " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }
