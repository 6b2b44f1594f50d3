package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/server"
)

type createStopRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (req *createStopRequest) validate() error {
	switch {
	case req.Name == "":
		return missingField("name")
	case req.Latitude == nil:
		return missingField("latitude")
	case req.Longitude == nil:
		return missingField("longitude")
	}
	return nil
}

type createPathRequest struct {
	PathName       string  `json:"path_name"`
	OrderedStopIDs []int64 `json:"ordered_stop_ids"`
}

func (req *createPathRequest) validate() error {
	if req.PathName == "" {
		return missingField("path_name")
	}
	if req.OrderedStopIDs == nil {
		return missingField("ordered_stop_ids")
	}
	return nil
}

type createRouteRequest struct {
	PathID           *int64 `json:"path_id"`
	RouteDisplayName string `json:"route_display_name"`
	ShiftTime        string `json:"shift_time"`
	Direction        string `json:"direction"`
	StartPoint       string `json:"start_point"`
	EndPoint         string `json:"end_point"`
	Status           string `json:"status"`
}

func (req *createRouteRequest) validate() error {
	if req.PathID == nil {
		return missingField("path_id")
	}
	required := []struct{ name, value string }{
		{"route_display_name", req.RouteDisplayName},
		{"shift_time", req.ShiftTime},
		{"direction", req.Direction},
		{"start_point", req.StartPoint},
		{"end_point", req.EndPoint},
		{"status", req.Status},
	}
	for _, f := range required {
		if f.value == "" {
			return missingField(f.name)
		}
	}
	return nil
}

func (req *createRouteRequest) input() domain.RouteInput {
	return domain.RouteInput{
		PathID:           *req.PathID,
		RouteDisplayName: req.RouteDisplayName,
		ShiftTime:        req.ShiftTime,
		Direction:        req.Direction,
		StartPoint:       req.StartPoint,
		EndPoint:         req.EndPoint,
		Status:           req.Status,
	}
}

type updateRouteStatusRequest struct {
	Status string `json:"status"`
}

type assignVehicleRequest struct {
	TripID    *int64 `json:"trip_id"`
	VehicleID *int64 `json:"vehicle_id"`
	DriverID  *int64 `json:"driver_id"`
}

func (req *assignVehicleRequest) validate() error {
	switch {
	case req.TripID == nil:
		return missingField("trip_id")
	case req.VehicleID == nil:
		return missingField("vehicle_id")
	case req.DriverID == nil:
		return missingField("driver_id")
	}
	return nil
}

// pathID parses an integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidRequest("value is not a valid integer").
			WithParam(name).
			WithStatusCode(http.StatusUnprocessableEntity)
	}
	return v, nil
}

// Stops

func (h *Handler) handleListStops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.store.ListStops(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, stops)
}

func (h *Handler) handleCreateStop(w http.ResponseWriter, r *http.Request) {
	var req createStopRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		server.WriteError(w, r, err)
		return
	}

	stop, err := h.store.CreateStop(r.Context(), req.Name, *req.Latitude, *req.Longitude)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, stop)
}

// Paths

func (h *Handler) handleListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.store.ListPaths(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, paths)
}

func (h *Handler) handleCreatePath(w http.ResponseWriter, r *http.Request) {
	var req createPathRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		server.WriteError(w, r, err)
		return
	}

	path, err := h.store.CreatePath(r.Context(), req.PathName, req.OrderedStopIDs)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, path)
}

// Routes

func (h *Handler) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.store.ListRoutes(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, routes)
}

func (h *Handler) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	var req createRouteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		server.WriteError(w, r, err)
		return
	}

	route, err := h.store.CreateRoute(r.Context(), req.input())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, route)
}

func (h *Handler) handleUpdateRouteStatus(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathID(r, "route_id")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	var req updateRouteStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if req.Status == "" {
		server.WriteError(w, r, missingField("status"))
		return
	}

	route, err := h.store.UpdateRouteStatus(r.Context(), routeID, req.Status)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	if route == nil {
		server.WriteError(w, r, domain.ErrResourceNotFound("Route not found"))
		return
	}
	server.WriteJSON(w, http.StatusOK, route)
}

// Vehicles and drivers

func (h *Handler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.store.ListVehicles(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, vehicles)
}

func (h *Handler) handleListUnassignedVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.store.ListUnassignedVehicles(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, vehicles)
}

func (h *Handler) handleListAvailableDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.store.ListAvailableDrivers(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, drivers)
}

// Trips and deployments

func (h *Handler) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.store.ListDailyTrips(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, trips)
}

func (h *Handler) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	deployments, err := h.store.ListDeployments(r.Context())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, deployments)
}

func (h *Handler) handleAssignVehicle(w http.ResponseWriter, r *http.Request) {
	var req assignVehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		server.WriteError(w, r, err)
		return
	}

	deployment, err := h.store.AssignVehicleToTrip(r.Context(), *req.TripID, *req.VehicleID, *req.DriverID)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, deployment)
}

func (h *Handler) handleRemoveVehicle(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "trip_id")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}

	removed, err := h.store.RemoveVehicleFromTrip(r.Context(), tripID)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	if !removed {
		server.WriteError(w, r, domain.ErrResourceNotFound("Deployment not found"))
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
