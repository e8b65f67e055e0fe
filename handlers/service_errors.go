package handlers

import (
	"errors"
	"net/http"

	"github.com/grantpulse/agentgate/services"
)

// StatusForError maps the gateway error taxonomy to HTTP status codes.
// Downstream and configuration failures both surface as 500: the first is an
// upstream system fault, the second an operator fault, and neither is the
// caller's.
func StatusForError(err error) int {
	switch services.GetErrorType(err) {
	case services.ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case services.ErrorTypeValidation, services.ErrorTypeUnknownAction:
		return http.StatusUnprocessableEntity
	case services.ErrorTypeNotFound:
		return http.StatusNotFound
	case services.ErrorTypeDownstream, services.ErrorTypeConfiguration, services.ErrorTypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// MessageForError picks the caller-facing message. Downstream failures are
// reduced to a generic message; the trace ID is the correlation handle, the
// detail lives in the audit log.
func MessageForError(err error) string {
	switch services.GetErrorType(err) {
	case services.ErrorTypeDownstream:
		return "downstream call failed"
	case services.ErrorTypeConfiguration, services.ErrorTypeInternal:
		return "internal gateway error"
	default:
		var domainErr *services.DomainError
		if errors.As(err, &domainErr) {
			return domainErr.Message
		}
		return "internal gateway error"
	}
}
