package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a gateway error
type ErrorType string

const (
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeUnknownAction  ErrorType = "unknown_action"
	ErrorTypeDownstream     ErrorType = "downstream"
	ErrorTypeConfiguration  ErrorType = "configuration"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInternal       ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details []string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetails returns a copy of the error carrying the full list of violated
// constraints. Validation errors carry every violation, not just the first.
// The receiver is left untouched so the shared sentinel errors stay clean.
func (e *DomainError) WithDetails(details ...string) *DomainError {
	out := *e
	out.Details = append(append([]string(nil), e.Details...), details...)
	return &out
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables

var (
	// Authentication errors
	ErrMissingSignature  = NewDomainError(ErrorTypeAuthentication, "missing or malformed signature header", nil)
	ErrInvalidSignature  = NewDomainError(ErrorTypeAuthentication, "signature verification failed", nil)
	ErrUnknownCredential = NewDomainError(ErrorTypeAuthentication, "credential does not match any tenant", nil)
	ErrMissingCredential = NewDomainError(ErrorTypeAuthentication, "missing caller credential", nil)
	ErrAdminRequired     = NewDomainError(ErrorTypeAuthentication, "admin credential required", nil)

	// Validation errors
	ErrInvalidEnvelope   = NewDomainError(ErrorTypeValidation, "envelope validation failed", nil)
	ErrInvalidParams     = NewDomainError(ErrorTypeValidation, "params validation failed", nil)
	ErrEmptyBody         = NewDomainError(ErrorTypeValidation, "request body is empty", nil)
	ErrWebhookNotAllowed = NewDomainError(ErrorTypeValidation, "webhook host not in allowlist", nil)

	// Dispatch errors
	ErrUnknownAction = NewDomainError(ErrorTypeUnknownAction, "action is not registered", nil)

	// Downstream errors
	ErrDownstreamFailed = NewDomainError(ErrorTypeDownstream, "downstream call failed", nil)
	ErrRetriesExhausted = NewDomainError(ErrorTypeDownstream, "downstream retries exhausted", nil)

	// Configuration errors (operator fault, not caller fault)
	ErrMissingGatewaySecret = NewDomainError(ErrorTypeConfiguration, "gateway signing secret not configured", nil)
	ErrNoTenantsConfigured  = NewDomainError(ErrorTypeConfiguration, "no tenant credentials configured", nil)

	// Internal errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "internal gateway error", nil)
)

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	return GetErrorType(err) == ErrorTypeAuthentication
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnknownActionError checks if an error names an unregistered action
func IsUnknownActionError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnknownAction
}

// IsDownstreamError checks if an error is a downstream failure
func IsDownstreamError(err error) bool {
	return GetErrorType(err) == ErrorTypeDownstream
}

// IsConfigurationError checks if an error indicates operator misconfiguration
func IsConfigurationError(err error) bool {
	return GetErrorType(err) == ErrorTypeConfiguration
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the violation list of a domain error, or nil if not a domain error
func GetErrorDetails(err error) []string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapDownstream wraps an error as a downstream failure
func WrapDownstream(message string, err error) error {
	return NewDomainError(ErrorTypeDownstream, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
