package exceptions

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a ServiceError.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// ServiceError is an error the transport layer can render with a specific status and message.
type ServiceError struct {
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (se *ServiceError) Error() string {
	if se.Cause != nil {
		return fmt.Sprintf("%s: %v", se.Message, se.Cause)
	}
	return se.Message
}

func (se *ServiceError) Unwrap() error {
	return se.Cause
}

// WithCode attaches a machine readable code, e.g. MANAGER_APPROVAL_REQUIRED.
func (se *ServiceError) WithCode(code string) *ServiceError {
	se.Code = code
	return se
}

func Validation(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: KindValidation, StatusCode: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(message string) *ServiceError {
	return &ServiceError{Kind: KindUnauthenticated, StatusCode: http.StatusUnauthorized, Message: message}
}

func Forbidden(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: KindForbidden, StatusCode: http.StatusForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string, id string) *ServiceError {
	return &ServiceError{
		Kind:       KindNotFound,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("could not find a %s with id: %s", resource, id),
	}
}

func Conflict(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: KindConflict, StatusCode: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a dependency failure. The cause is logged, never shown to callers.
func Internal(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindInternal, StatusCode: http.StatusInternalServerError, Message: message, Cause: cause}
}

// As returns the ServiceError in err's chain, if any.
func As(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err carries a ServiceError of the given kind.
func IsKind(err error, kind Kind) bool {
	se, ok := As(err)
	return ok && se.Kind == kind
}
