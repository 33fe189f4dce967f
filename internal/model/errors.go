// internal/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the protocol engine and the configuration session.
var (
	// ErrNotConnected is returned when a command is attempted before the
	// device prompt has been observed.
	ErrNotConnected = errors.New("device not connected")

	// ErrTransport wraps I/O failures on the underlying link.
	ErrTransport = errors.New("transport error")

	// ErrProtocol marks malformed or unrecognized device responses.
	ErrProtocol = errors.New("protocol error")

	// ErrValidation marks a field value that violates its kind constraint.
	ErrValidation = errors.New("validation error")

	// ErrUnknownDevice is returned when a device identity matches no known
	// specification.
	ErrUnknownDevice = errors.New("unknown device")
)

// FieldError identifies the configuration field that stopped a write.
type FieldError struct {
	Section string
	Caption string
	ID      string
	Err     error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrValidation) {
		return fmt.Sprintf("the field '%s' in tab '%s' is not valid: %v", e.Caption, e.Section, e.Err)
	}
	return fmt.Sprintf("the field '%s' in tab '%s' can't be written into the device: %v", e.Caption, e.Section, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
