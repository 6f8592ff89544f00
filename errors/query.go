package errors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a query error as reported to clients in the
// GraphQL "extensions.code" field.
type Code string

const (
	CodeNotFound                  Code = "NOT_FOUND"
	CodeInvalidArgument           Code = "INVALID_ARGUMENT"
	CodeUnsupportedRepresentation Code = "UNSUPPORTED_REPRESENTATION"
)

// Sentinels matched by errors.Is against a *QueryError of the same code.
var (
	ErrNotFound                  = errors.New("not found")
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrUnsupportedRepresentation = errors.New("unsupported representation")
)

// QueryError is a caller-facing error naming the offending value.
type QueryError struct {
	Code    Code
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// Is matches the sentinel for the error's code.
func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrInvalidArgument:
		return e.Code == CodeInvalidArgument
	case ErrUnsupportedRepresentation:
		return e.Code == CodeUnsupportedRepresentation
	}
	return false
}

// Extensions exposes the code to GraphQL error responses.
func (e *QueryError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": string(e.Code),
	}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) error {
	return &QueryError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports a bad argument value.
func InvalidArgument(format string, args ...any) error {
	return &QueryError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedRepresentation reports a color representation, or a stored color
// value, that cannot be rendered in the requested format.
func UnsupportedRepresentation(format string, args ...any) error {
	return &QueryError{Code: CodeUnsupportedRepresentation, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the query error code of err, if any.
func CodeOf(err error) (Code, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code, true
	}
	return "", false
}
