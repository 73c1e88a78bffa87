package services

import (
	"errors"
	"fmt"
	"net/http"

	"pedium/internal/documents"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError is a structured service failure with an HTTP mapping
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewPermissionError creates an error naming the missing permission so
// the operator knows which role or scope to grant.
func NewPermissionError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "PERMISSION_DENIED",
		Message:    message,
		StatusCode: http.StatusForbidden,
		Cause:      cause,
	}
}

// NewSchemaDriftError creates an error describing the missing schema
// element (attribute, index, or collection) and how to provision it.
func NewSchemaDriftError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "SCHEMA_DRIFT",
		Message:    message,
		Code:       "BACKEND_SCHEMA_INCOMPLETE",
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewSetupError creates the connectivity/configuration error that
// drives the full-screen remediation guide instead of a generic 500.
func NewSetupError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "BACKEND_UNREACHABLE",
		Message:    message,
		Code:       "SETUP_REQUIRED",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from err, or wraps it as a
// generic internal error.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return NewInternalError(err.Error())
}

// IsErrorType checks whether err carries the given service error type
func IsErrorType(err error, errorType string) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, "NOT_FOUND")
}

// IsSetupError checks if an error should surface the remediation guide
func IsSetupError(err error) bool {
	return IsErrorType(err, "BACKEND_UNREACHABLE")
}

// translateStoreError maps a classified document store failure onto the
// service error taxonomy. Fallback-recoverable kinds never reach here;
// this is the surface for failures with no local recovery.
func translateStoreError(err error, resource string) error {
	se, ok := documents.AsStoreError(err)
	if !ok {
		return err
	}
	switch se.Kind {
	case documents.KindNotFound:
		return NewNotFoundError(fmt.Sprintf("%s not found", resource))
	case documents.KindPermission:
		return NewPermissionError(
			fmt.Sprintf("the backend rejected the %s operation: %s; grant the required role in the project console", resource, se.Message),
			err,
		)
	case documents.KindUnknownAttribute:
		return NewSchemaDriftError(
			fmt.Sprintf("the %s collection is missing the %q attribute; add it in the database console", resource, se.Attribute),
			err,
		)
	case documents.KindMissingCollection:
		return NewSchemaDriftError(
			fmt.Sprintf("the %s collection does not exist; create it in the database console", resource),
			err,
		)
	case documents.KindMissingIndex:
		return NewSchemaDriftError(
			fmt.Sprintf("a query on %s needs an index that is not provisioned: %s", resource, se.Message),
			err,
		)
	case documents.KindUnavailable:
		return NewSetupError(
			"the document store endpoint is unreachable; check DOCSTORE_ENDPOINT and DOCSTORE_PROJECT_ID",
			err,
		)
	default:
		return NewInternalError(se.Message)
	}
}
