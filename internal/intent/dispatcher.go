// Package intent maps named agent intents onto transport store operations.
//
// The intent table is static: every supported name is bound to a handler
// when the package initialises, so an unknown intent is a lookup miss.
package intent

import (
	"context"
	"slices"

	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
)

// Intent names understood by the dispatcher.
const (
	ListUnassignedVehicles = "list_unassigned_vehicles"
	GetTripStatus          = "get_trip_status"
	ListStopsForPath       = "list_stops_for_path"
	ListRoutesUsingPath    = "list_routes_using_path"
	AssignVehicleToTrip    = "assign_vehicle_to_trip"
	RemoveVehicleFromTrip  = "remove_vehicle_from_trip"
	CreateStop             = "create_stop"
	CreatePath             = "create_path"
	CreateRoute            = "create_route"
	UpdateRouteStatus      = "update_route_status"
	ListDailyTrips         = "list_daily_trips"
	ListDeployments        = "list_deployments"
	ListAvailableDrivers   = "list_available_drivers"
)

// Handler performs one intent against the store. It returns the payload
// and a human-readable message, or an error for malformed parameters and
// store failures.
type Handler func(ctx context.Context, store ports.TransportStore, params Params) (any, string, error)

// Func is a handler bound to a store.
type Func func(ctx context.Context, params Params) (any, string, error)

var handlers = map[string]Handler{
	ListUnassignedVehicles: handleListUnassignedVehicles,
	GetTripStatus:          handleGetTripStatus,
	ListStopsForPath:       handleListStopsForPath,
	ListRoutesUsingPath:    handleListRoutesUsingPath,
	AssignVehicleToTrip:    handleAssignVehicleToTrip,
	RemoveVehicleFromTrip:  handleRemoveVehicleFromTrip,
	CreateStop:             handleCreateStop,
	CreatePath:             handleCreatePath,
	CreateRoute:            handleCreateRoute,
	UpdateRouteStatus:      handleUpdateRouteStatus,
	ListDailyTrips:         handleListDailyTrips,
	ListDeployments:        handleListDeployments,
	ListAvailableDrivers:   handleListAvailableDrivers,
}

// Dispatcher resolves intent names to handlers bound to a store.
type Dispatcher struct {
	store ports.TransportStore
}

// NewDispatcher creates a dispatcher over store.
func NewDispatcher(store ports.TransportStore) *Dispatcher {
	return &Dispatcher{store: store}
}

// Lookup returns the handler for name bound to the dispatcher's store.
func (d *Dispatcher) Lookup(name string) (Func, bool) {
	h, ok := handlers[name]
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, params Params) (any, string, error) {
		return h(ctx, d.store, params)
	}, true
}

// Known reports whether name is a supported intent.
func Known(name string) bool {
	_, ok := handlers[name]
	return ok
}

// Names returns the supported intent names in sorted order.
func Names() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
