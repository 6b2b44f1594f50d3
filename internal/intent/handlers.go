package intent

import (
	"context"
	"fmt"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
)

func handleListUnassignedVehicles(ctx context.Context, store ports.TransportStore, _ Params) (any, string, error) {
	vehicles, err := store.ListUnassignedVehicles(ctx)
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"vehicles": vehicles}, fmt.Sprintf("Found %d unassigned vehicles.", len(vehicles)), nil
}

func handleGetTripStatus(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	name := params.OptionalString("trip_name")
	status, err := store.GetTripStatus(ctx, name)
	if err != nil {
		return nil, "", err
	}
	if status == nil {
		return nil, fmt.Sprintf("Trip '%s' not found.", name), nil
	}
	return map[string]any{"status": *status}, fmt.Sprintf("%s is currently %s.", name, *status), nil
}

func handleListStopsForPath(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	name := params.OptionalString("path_name")
	stops := []domain.Stop{}

	path, err := store.GetPathByName(ctx, name)
	if err != nil {
		return nil, "", err
	}
	if path != nil {
		for _, id := range path.OrderedStopIDs {
			stop, err := store.GetStopByID(ctx, id)
			if err != nil {
				return nil, "", err
			}
			if stop != nil {
				stops = append(stops, *stop)
			}
		}
	}

	return map[string]any{"stops": stops}, fmt.Sprintf("Path %s covers %d stops.", name, len(stops)), nil
}

func handleListRoutesUsingPath(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	name := params.OptionalString("path_name")
	routes := []domain.Route{}

	path, err := store.GetPathByName(ctx, name)
	if err != nil {
		return nil, "", err
	}
	if path != nil {
		routes, err = store.ListRoutesUsingPath(ctx, path.PathID)
		if err != nil {
			return nil, "", err
		}
	}

	return map[string]any{"routes": routes}, fmt.Sprintf("Found %d routes using %s.", len(routes), name), nil
}

func handleAssignVehicleToTrip(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	tripID, err := params.Int("trip_id")
	if err != nil {
		return nil, "", err
	}
	vehicleID, err := params.Int("vehicle_id")
	if err != nil {
		return nil, "", err
	}
	driverID, err := params.Int("driver_id")
	if err != nil {
		return nil, "", err
	}

	deployment, err := store.AssignVehicleToTrip(ctx, tripID, vehicleID, driverID)
	if err != nil {
		return nil, "", err
	}
	return deployment, "Vehicle assigned successfully.", nil
}

func handleRemoveVehicleFromTrip(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	tripID, ok, err := params.OptionalInt("trip_id")
	if err != nil {
		return nil, "", err
	}

	removed := false
	if ok {
		removed, err = store.RemoveVehicleFromTrip(ctx, tripID)
		if err != nil {
			return nil, "", err
		}
	}

	if removed {
		return map[string]any{"removed": true}, "Vehicle removed from trip.", nil
	}
	return map[string]any{"removed": false}, "No vehicle assignment found for that trip.", nil
}

func handleCreateStop(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	name, err := params.String("name")
	if err != nil {
		return nil, "", err
	}
	lat, err := params.Float("latitude")
	if err != nil {
		return nil, "", err
	}
	lon, err := params.Float("longitude")
	if err != nil {
		return nil, "", err
	}

	stop, err := store.CreateStop(ctx, name, lat, lon)
	if err != nil {
		return nil, "", err
	}
	return stop, fmt.Sprintf("Created stop %s.", stop.Name), nil
}

func handleCreatePath(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	name, err := params.String("name")
	if err != nil {
		return nil, "", err
	}
	stopIDs, err := params.IntSlice("stop_ids")
	if err != nil {
		return nil, "", err
	}

	path, err := store.CreatePath(ctx, name, stopIDs)
	if err != nil {
		return nil, "", err
	}
	return path, fmt.Sprintf("Created path %s.", path.PathName), nil
}

func handleCreateRoute(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	var in domain.RouteInput
	var err error

	if in.PathID, err = params.Int("path_id"); err != nil {
		return nil, "", err
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"route_display_name", &in.RouteDisplayName},
		{"shift_time", &in.ShiftTime},
		{"direction", &in.Direction},
		{"start_point", &in.StartPoint},
		{"end_point", &in.EndPoint},
		{"status", &in.Status},
	}
	for _, f := range fields {
		if *f.dst, err = params.String(f.key); err != nil {
			return nil, "", err
		}
	}

	route, err := store.CreateRoute(ctx, in)
	if err != nil {
		return nil, "", err
	}
	return route, fmt.Sprintf("Route %s created.", route.RouteDisplayName), nil
}

func handleUpdateRouteStatus(ctx context.Context, store ports.TransportStore, params Params) (any, string, error) {
	routeID, err := params.Int("route_id")
	if err != nil {
		return nil, "", err
	}
	status, err := params.String("status")
	if err != nil {
		return nil, "", err
	}

	route, err := store.UpdateRouteStatus(ctx, routeID, status)
	if err != nil {
		return nil, "", err
	}
	if route == nil {
		return nil, "Route not found.", nil
	}
	return route, fmt.Sprintf("Route status updated to %s.", status), nil
}

func handleListDailyTrips(ctx context.Context, store ports.TransportStore, _ Params) (any, string, error) {
	trips, err := store.ListDailyTrips(ctx)
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"trips": trips}, fmt.Sprintf("Found %d daily trips.", len(trips)), nil
}

func handleListDeployments(ctx context.Context, store ports.TransportStore, _ Params) (any, string, error) {
	deployments, err := store.ListDeployments(ctx)
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"deployments": deployments}, fmt.Sprintf("Found %d deployments.", len(deployments)), nil
}

func handleListAvailableDrivers(ctx context.Context, store ports.TransportStore, _ Params) (any, string, error) {
	drivers, err := store.ListAvailableDrivers(ctx)
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"drivers": drivers}, fmt.Sprintf("Found %d available drivers.", len(drivers)), nil
}
