package core

import "github.com/pkg/errors"

var (
	ErrForbidden       = errors.New("permission denied")
	ErrUnauthenticated = NewUnauthenticatedError("user not authenticated")

	// raised by the storage layer, translated to domain errors by the services
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func (err NotFoundError) Error() string {
	return err.Resource + " not found"
}

// ConflictError is returned when a mutation would break a uniqueness or state invariant.
type ConflictError struct {
	Err    error
	Fields []FieldError
}

func NewConflictError(err error, flds ...FieldError) error {
	return &ConflictError{err, flds}
}

func (err ConflictError) Error() string {
	if err.Err == nil {
		return "conflict"
	}
	return err.Err.Error()
}

func (err ConflictError) Unwrap() error { return err.Err }

type UnauthenticatedError struct {
	message string
}

func NewUnauthenticatedError(msg string) error {
	return &UnauthenticatedError{message: msg}
}

func (err UnauthenticatedError) Error() string {
	return err.message
}

// UnavailableError wraps transient storage failures. Callers may retry with backoff.
type UnavailableError struct {
	Err error
}

func NewUnavailableError(err error) error {
	return &UnavailableError{Err: err}
}

func (err UnavailableError) Error() string {
	if err.Err == nil {
		return "service unavailable"
	}
	return "service unavailable: " + err.Err.Error()
}

func (err UnavailableError) Unwrap() error { return err.Err }

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsUnauthenticated(err error) bool {
	_, ok := errors.Cause(err).(*UnauthenticatedError)
	return ok
}

func IsUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*UnavailableError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
