package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrRange is wrapped by every RangeError. A field value does not fit
	// its bit width or is not a legal value for the field.
	ErrRange = errors.New("value out of range")

	// ErrCapacityExceeded means a block would push a packet past its size
	// ceiling. It is recovered locally by flushing the packet.
	ErrCapacityExceeded = errors.New("block does not fit in packet")

	// ErrMalformed is wrapped by every DecodeError.
	ErrMalformed = errors.New("malformed packet data")
)

// RangeError reports a value that cannot be encoded into its wire field.
type RangeError struct {
	Field  string
	Value  any
	Reason string
}

func (e *RangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %v: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s %v: %v", e.Field, e.Value, ErrRange)
}

func (e *RangeError) Unwrap() error {
	return ErrRange
}

func rangeErr(field string, value any, format string, args ...any) error {
	return &RangeError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// DecodeError reports bytes that do not form a valid header, block or
// payload. Offset is relative to the start of the buffer handed to the
// decoder.
type DecodeError struct {
	Offset int
	What   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at offset %d: %s", e.What, e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrMalformed
}

func decodeErr(offset int, what, format string, args ...any) error {
	return &DecodeError{Offset: offset, What: what, Reason: fmt.Sprintf(format, args...)}
}
