package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTimeout      = "REQUEST_TIMEOUT"
	CodeCanceled     = "REQUEST_CANCELLED"
	CodeInternal     = "INTERNAL_ERROR"
)

// StatusClientClosedRequest is the non-standard status recorded when the
// caller went away before the request finished.
const StatusClientClosedRequest = 499

// FieldErrors maps a request field to the messages describing why it was rejected.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Merge copies all messages of other into f.
func (f FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		f[field] = append(f[field], msgs...)
	}
}

// Messages flattens the messages in field order.
func (f FieldErrors) Messages() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var out []string
	for _, field := range fields {
		out = append(out, f[field]...)
	}
	return out
}

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Fields     FieldErrors
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, fields FieldErrors) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Fields: fields}
}

// NewValidationError reports rejected input. An empty message is derived from fields.
func NewValidationError(message string, fields FieldErrors) error {
	if message == "" && len(fields) > 0 {
		message = strings.Join(fields.Messages(), "; ")
	}
	if message == "" {
		message = "validation failed"
	}
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, fields)
}

// NewFieldError is a validation error for a single field.
func NewFieldError(field, message string) error {
	return NewValidationError(message, FieldErrors{field: {message}})
}

func NewNotFound(resource string, id any) error {
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s with ID %v was not found.", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == CodeNotFound
}

// IsValidation reports whether err carries the VALIDATION_FAILED code.
func IsValidation(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == CodeValidation
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &DomainError{
			Code:       CodeTimeout,
			Message:    "request timed out",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &DomainError{
			Code:       CodeCanceled,
			Message:    "request cancelled",
			HTTPStatus: StatusClientClosedRequest,
			Err:        err,
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromFiberError(err *fiber.Error) *DomainError {
	switch {
	case err.Code == http.StatusNotFound:
		return &DomainError{Code: CodeNotFound, Message: err.Message, HTTPStatus: err.Code}
	case err.Code == http.StatusUnauthorized:
		return &DomainError{Code: CodeUnauthorized, Message: err.Message, HTTPStatus: err.Code}
	case err.Code >= 400 && err.Code < 500:
		return &DomainError{Code: CodeValidation, Message: err.Message, HTTPStatus: err.Code}
	default:
		return &DomainError{Code: CodeInternal, Message: "internal server error", HTTPStatus: err.Code, Err: err}
	}
}
