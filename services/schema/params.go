package schema

// Declared parameter contracts, one per action. Executors consume these
// concrete types; the boundary validates them before dispatch.

// PaveQueryParams wraps a read query against the compensation API.
type PaveQueryParams struct {
	Pave PaveQuerySpec `json:"pave" validate:"required"`
}

// PaveQuerySpec names the downstream resource and pagination. Size is the
// page size; the downstream rejects pages over 100, so the gateway does too.
type PaveQuerySpec struct {
	Path    string                 `json:"path" validate:"required"`
	Method  string                 `json:"method" validate:"omitempty,oneof=GET POST"`
	Size    int                    `json:"size" validate:"omitempty,min=1,max=100"`
	Cursor  string                 `json:"cursor"`
	Filters map[string]interface{} `json:"filters"`
}

// RecordUpdateParams describes a side-effecting update to one downstream record.
type RecordUpdateParams struct {
	RecordID string                 `json:"recordId" validate:"required"`
	Fields   map[string]interface{} `json:"fields" validate:"required,min=1"`
}

// WebhookRegisterParams registers a partner webhook endpoint.
type WebhookRegisterParams struct {
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events" validate:"required,min=1,dive,oneof=record.created record.updated payout.processed"`
}
