// Package transport serves the transport-operations REST API: CRUD over
// stops, paths, routes, vehicles, drivers, trips and deployments, the
// agent action endpoint and the vision matching endpoint.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/server"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Store is the storage surface the API reads and writes.
type Store interface {
	ports.TransportStore
	ports.ActionEventStore
}

// Handler serves the REST API.
type Handler struct {
	store   Store
	agent   ports.ActionHandler
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetricsHandler exposes h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(hd *Handler) {
		hd.metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a Handler backed by store that forwards agent actions
// to agent.
func NewHandler(store Store, agent ports.ActionHandler, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		agent:  agent,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount registers every route on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Get("/stops", h.handleListStops)
	r.Post("/stops", h.handleCreateStop)

	r.Get("/paths", h.handleListPaths)
	r.Post("/paths", h.handleCreatePath)

	r.Get("/routes", h.handleListRoutes)
	r.Post("/routes", h.handleCreateRoute)
	r.Patch("/routes/{route_id}/status", h.handleUpdateRouteStatus)

	r.Get("/vehicles", h.handleListVehicles)
	r.Get("/vehicles/unassigned", h.handleListUnassignedVehicles)
	r.Get("/drivers/available", h.handleListAvailableDrivers)

	r.Get("/trips", h.handleListTrips)

	r.Get("/deployments", h.handleListDeployments)
	r.Post("/deployments/assign", h.handleAssignVehicle)
	r.Delete("/deployments/{trip_id}", h.handleRemoveVehicle)

	r.Post("/agent/action", h.handleAgentAction)
	r.Get("/agent/events", h.handleListEvents)

	r.Post("/vision/match", h.handleVisionMatch)

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a single JSON object from the request body into v.
// Numbers are kept as json.Number so integer parameters survive intact.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrInvalidRequest("request body is empty")
		}
		return domain.ErrInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)).WithCause(err)
	}
	return nil
}

// missingField reports a required field absent from a request body.
func missingField(name string) error {
	return domain.ErrInvalidRequest("field required").
		WithParam(name).
		WithStatusCode(http.StatusUnprocessableEntity)
}
