package handler

import (
	"encoding/json"
	"net/http"

	"mc-console-api/pkg/apierror"
	"mc-console-api/pkg/credparse"
	"mc-console-api/pkg/response"
)

// CredentialsHandler handles credential-parsing HTTP requests.
type CredentialsHandler struct{}

// NewCredentialsHandler creates a new credentials handler.
func NewCredentialsHandler() *CredentialsHandler {
	return &CredentialsHandler{}
}

// ParseRequest represents the request body for credential extraction.
type ParseRequest struct {
	Text string `json:"text"`
}

// Parse handles POST /api/v1/credentials/parse
// Extracts labeled credential fields from pasted free-form text. Best
// effort: unrecognized input yields empty fields, never an error.
func (h *CredentialsHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	response.OK(w, credparse.Parse(req.Text))
}
