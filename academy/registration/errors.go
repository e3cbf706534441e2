package registration

import (
	"errors"
	"strings"
)

// ValidationError marks user input that was rejected; the flow re-prompts and keeps the session.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "registration: invalid " + e.Field
}

// Code returns a stable identifier such as INVALID_PHONE.
func (e *ValidationError) Code() string {
	return "INVALID_" + strings.ToUpper(e.Field)
}

var (
	ErrInvalidName      error = &ValidationError{Field: "name"}
	ErrInvalidAge       error = &ValidationError{Field: "age"}
	ErrInvalidPhone     error = &ValidationError{Field: "phone"}
	ErrUnknownSelection error = &ValidationError{Field: "selection"}

	// ErrSessionCorrupted means confirm was reached with required fields missing.
	ErrSessionCorrupted = errors.New("registration: session is missing required fields")
)
