package kconvert

import (
	"errors"
	"fmt"
)

const (
	msgToJSON   = "Failed to convert to JSON"
	msgFromJSON = "Failed to convert from JSON"
)

var (
	// ErrUnsupportedRepresentation is returned by Decode when the inbound
	// value is neither text nor bytes. It points at a misconfigured
	// deserializer chain and must not be retried.
	ErrUnsupportedRepresentation = errors.New("kconvert: only text or []byte values are supported")

	// ErrNilEngine is the panic value of NewWithEngine when no engine is
	// given.
	ErrNilEngine = errors.New("kconvert: 'engine' must not be nil")

	// ErrInvalidType is returned by Decode for a zero Type.
	ErrInvalidType = errors.New("kconvert: invalid target type")
)

// ConversionError reports that the engine could not encode or decode a
// payload. It is the only error kind Encode returns and the one Decode
// returns for bad data.
type ConversionError struct {
	// Msg tells the direction of the failed conversion.
	Msg string

	// Cause is the engine error.
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// IsConversionError reports whether err is or wraps a *ConversionError.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}
