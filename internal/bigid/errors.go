// File: internal/bigid/errors.go
package bigid

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is; the messages of the concrete
// errors are the user-facing text shown in the BigID UI.
var (
	ErrNotFound          = errors.New("not found")
	ErrBadStatus         = errors.New("bad response status")
	ErrMalformedResponse = errors.New("malformed response")
	ErrTimeout           = errors.New("request timed out")
	ErrIntegrity         = errors.New("data integrity violation")
	ErrUnauthorized      = errors.New("unauthorized")
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string        { return e.msg }
func (e *kindError) Is(target error) bool { return target == e.kind }
func (e *kindError) Unwrap() error        { return e.cause }

func newKindError(kind, cause error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// NotFoundf reports that a looked-up entity (cases, policy, tag) does not exist.
func NotFoundf(format string, args ...interface{}) error {
	return newKindError(ErrNotFound, nil, format, args...)
}

// Integrityf reports data that contradicts itself, e.g. a declared object
// count with no objects behind it.
func Integrityf(format string, args ...interface{}) error {
	return newKindError(ErrIntegrity, nil, format, args...)
}

// Malformedf reports a payload that does not match its endpoint schema.
func Malformedf(cause error, format string, args ...interface{}) error {
	return newKindError(ErrMalformedResponse, cause, format, args...)
}

// APIError is a non-2xx answer from a remote API.
type APIError struct {
	// Service is the display name used in the message, e.g. "BigID".
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("Bad response from %s API. Status: %d.", e.Service, e.StatusCode)
	if e.Body != "" {
		msg += fmt.Sprintf(" Errors: %s.", e.Body)
	}
	return msg
}

func (e *APIError) Is(target error) bool { return target == ErrBadStatus }

type annotated struct {
	prefix string
	cause  error
}

func (e *annotated) Error() string {
	return e.prefix + " " + strings.TrimSuffix(e.cause.Error(), ".") + "."
}

func (e *annotated) Unwrap() error { return e.cause }

// Annotate prefixes err with context, keeping it period-terminated and
// reachable through errors.Is and errors.As. A nil err stays nil.
func Annotate(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return &annotated{prefix: prefix, cause: err}
}
