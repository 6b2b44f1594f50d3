package server

import (
	"encoding/json"
	"net/http"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto an APIError, records it in the request log and
// writes the {"detail", "type"} body.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := domain.AsAPIError(err)
	AddError(r.Context(), err)
	WriteJSON(w, apiErr.HTTPStatusCode(), apiErr)
}
