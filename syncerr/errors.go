package syncerr

import (
	"errors"
	"fmt"
)

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	// KindConfig marks malformed input: dates, layer selectors, versions,
	// API keys or a connection string that contradicts explicit parameters.
	KindConfig Kind = "config"
	// KindProtocol marks a connection string failing a version-specific
	// structural check.
	KindProtocol Kind = "protocol"
	// KindTransport marks a failure reaching or reading the WFS source.
	KindTransport Kind = "transport"
	// KindStore marks a failure reading or writing the destination.
	KindStore Kind = "store"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op    string
	Kind  Kind
	Field string // Optional: offending field name
	Value string // Optional: offending value
	Err   error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Field != "" {
		base += fmt.Sprintf(" (%s=%q)", e.Field, e.Value)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Config builds a configuration error for field/value.
func Config(op, field, value string, err error) *OpError {
	return &OpError{Op: op, Kind: KindConfig, Field: field, Value: value, Err: err}
}

// Configf is Config with a formatted cause.
func Configf(op, field, value, format string, args ...any) *OpError {
	return Config(op, field, value, fmt.Errorf(format, args...))
}

// Protocol builds a protocol validation error; clause names the failed check.
func Protocol(op, clause, value string, err error) *OpError {
	return &OpError{Op: op, Kind: KindProtocol, Field: clause, Value: value, Err: err}
}

// Transport wraps err as a transport error.
func Transport(op string, err error) *OpError {
	return &OpError{Op: op, Kind: KindTransport, Err: err}
}

// Store wraps err as a destination store error.
func Store(op string, err error) *OpError {
	return &OpError{Op: op, Kind: KindStore, Err: err}
}

// IsKind reports whether any error in err's chain is an OpError of kind.
func IsKind(err error, kind Kind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// IsInput reports whether err should be fixed by changing input rather than
// by retrying.
func IsInput(err error) bool {
	return IsKind(err, KindConfig) || IsKind(err, KindProtocol)
}
