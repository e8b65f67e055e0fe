package utils

import (
	"encoding/json"
	"net/http"

	"github.com/grantpulse/agentgate/models"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes the 200 success envelope for a completed action.
func WriteSuccess(w http.ResponseWriter, resp *models.ActionResponse) error {
	return WriteJSON(w, http.StatusOK, resp)
}

// WriteFailure writes the failure envelope with the given status code. The
// trace ID is always present so operators can find the audit entry.
func WriteFailure(w http.ResponseWriter, status int, traceID, message string, details interface{}) error {
	return WriteJSON(w, status, models.ErrorEnvelope{
		OK:      false,
		TraceID: traceID,
		Error:   message,
		Details: details,
	})
}

// WriteUnauthorized writes a 401 failure envelope.
func WriteUnauthorized(w http.ResponseWriter, traceID, message string) error {
	if message == "" {
		message = "authentication required"
	}
	return WriteFailure(w, http.StatusUnauthorized, traceID, message, nil)
}

// WriteOK writes a plain 200 response for non-pipeline endpoints.
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}
