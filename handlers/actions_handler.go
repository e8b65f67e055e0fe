package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/app"
	"github.com/grantpulse/agentgate/services"
	"github.com/grantpulse/agentgate/services/pipeline"
	"github.com/grantpulse/agentgate/utils"
)

// Header names on the inbound boundary.
const (
	SignatureHeader  = "X-Gateway-Signature"
	CredentialHeader = "X-Gateway-Credential"
)

// ExecuteActionHandler is the single pipeline entry point. It hands the
// transport-level pieces (raw body, headers) to the pipeline and translates
// the outcome into the response envelope.
func ExecuteActionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawBody, err := io.ReadAll(r.Body)
		if err != nil {
			deps.Logger.Warn("failed to read request body", zap.Error(err))
			_ = utils.WriteFailure(w, http.StatusBadRequest, "", "failed to read request body", nil)
			return
		}
		if len(rawBody) == 0 {
			_ = utils.WriteFailure(w, http.StatusBadRequest, "", "request body is required", nil)
			return
		}

		resp, traceID, err := deps.Pipeline.Handle(r.Context(), pipeline.Request{
			RawBody:         rawBody,
			SignatureHeader: r.Header.Get(SignatureHeader),
			Credential:      r.Header.Get(CredentialHeader),
		})
		if err != nil {
			status := StatusForError(err)
			if status >= http.StatusInternalServerError {
				deps.Logger.Error("pipeline failure",
					zap.String("trace_id", traceID),
					zap.Error(err))
			}
			var details interface{}
			if d := services.GetErrorDetails(err); len(d) > 0 {
				details = d
			}
			_ = utils.WriteFailure(w, status, traceID, MessageForError(err), details)
			return
		}

		_ = utils.WriteSuccess(w, resp)
	}
}
