package transport

import (
	"net/http"
	"strconv"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/server"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// handleAgentAction runs the request through the agent pipeline. Every
// pipeline outcome, including unknown intents and handler failures, is a
// 200 with a message.
func (h *Handler) handleAgentAction(w http.ResponseWriter, r *http.Request) {
	var req domain.ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if req.Intent == "" {
		server.WriteError(w, r, missingField("intent"))
		return
	}
	server.AddLogField(r.Context(), "intent", req.Intent)

	server.WriteJSON(w, http.StatusOK, h.agent.Handle(r.Context(), req))
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= maxEventLimit {
			limit = v
		}
	}

	events, err := h.store.ListActionEvents(r.Context(), limit)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, events)
}
