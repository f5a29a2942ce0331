package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration Errors.
	// These are fatal at startup: no record is processed after one of them.

	// ErrInvalidConfig indicates a malformed converter or application configuration,
	// e.g. a pattern without replacement or a service template without placeholder.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedType indicates an unknown destination type or source kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrAlreadyRegistered indicates a destination type was registered twice.
	ErrAlreadyRegistered = errors.New("already registered")

	// Record Errors.
	// These abandon the current record only; the batch continues.

	// ErrMissingRequired indicates a required field was absent or produced no value.
	ErrMissingRequired = errors.New("missing required field")

	// ErrInvalidValue indicates a source value that cannot be read as its declared type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrStaticFieldsFrozen indicates a static field was set after record processing began.
	ErrStaticFieldsFrozen = errors.New("static fields are frozen")
)

// IsRecordError reports whether err abandons a single record rather than the batch.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrMissingRequired) || errors.Is(err, ErrInvalidValue)
}
