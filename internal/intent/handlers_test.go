package intent

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/memory"
)

func newFixture(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	for _, s := range []struct {
		name     string
		lat, lon float64
	}{
		{"Campus Gate", 12.9716, 77.5946},
		{"Tech Park", 12.9081, 77.6476},
		{"Metro Station", 12.9352, 77.6245},
	} {
		if _, err := store.CreateStop(ctx, s.name, s.lat, s.lon); err != nil {
			t.Fatalf("CreateStop() error = %v", err)
		}
	}
	if _, err := store.CreatePath(ctx, "North Loop", []int64{1, 2, 3, 42}); err != nil {
		t.Fatalf("CreatePath() error = %v", err)
	}
	if _, err := store.CreateRoute(ctx, domain.RouteInput{PathID: 1, RouteDisplayName: "Bulk - 00:01", Status: "Scheduled"}); err != nil {
		t.Fatalf("CreateRoute() error = %v", err)
	}
	for _, plate := range []string{"KA01AB1234", "KA01AB5678"} {
		if err := store.SeedVehicle(ctx, &domain.Vehicle{LicensePlate: plate, IsActive: true}); err != nil {
			t.Fatalf("SeedVehicle() error = %v", err)
		}
	}
	if err := store.SeedDriver(ctx, &domain.Driver{Name: "Sanjay Kumar"}); err != nil {
		t.Fatalf("SeedDriver() error = %v", err)
	}
	if err := store.SeedTrip(ctx, &domain.DailyTrip{RouteID: 1, DisplayName: "Bulk - 00:01", LiveStatus: "Scheduled"}); err != nil {
		t.Fatalf("SeedTrip() error = %v", err)
	}
	return store
}

func run(t *testing.T, store *memory.Store, name string, params Params) (any, string, error) {
	t.Helper()
	h, ok := NewDispatcher(store).Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%q) missing", name)
	}
	return h(context.Background(), params)
}

func TestLookup_Unknown(t *testing.T) {
	if _, ok := NewDispatcher(memory.New()).Lookup("launch_rocket"); ok {
		t.Error("Lookup() found a handler for an unknown intent")
	}
	if Known("launch_rocket") {
		t.Error("Known() = true for unknown intent")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 13 {
		t.Fatalf("Names() count = %d, want 13", len(names))
	}
	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
	if names[0] != AssignVehicleToTrip {
		t.Errorf("Names()[0] = %q, want %q", names[0], AssignVehicleToTrip)
	}
}

func TestHandlers_Messages(t *testing.T) {
	tests := []struct {
		intent  string
		params  Params
		message string
	}{
		{ListUnassignedVehicles, nil, "Found 2 unassigned vehicles."},
		{GetTripStatus, Params{"trip_name": "Bulk - 00:01"}, "Bulk - 00:01 is currently Scheduled."},
		{GetTripStatus, Params{"trip_name": "Ghost"}, "Trip 'Ghost' not found."},
		{ListStopsForPath, Params{"path_name": "North Loop"}, "Path North Loop covers 3 stops."},
		{ListStopsForPath, Params{"path_name": "Nowhere"}, "Path Nowhere covers 0 stops."},
		{ListRoutesUsingPath, Params{"path_name": "North Loop"}, "Found 1 routes using North Loop."},
		{ListRoutesUsingPath, Params{"path_name": "Nowhere"}, "Found 0 routes using Nowhere."},
		{RemoveVehicleFromTrip, Params{"trip_id": float64(9)}, "No vehicle assignment found for that trip."},
		{RemoveVehicleFromTrip, Params{}, "No vehicle assignment found for that trip."},
		{CreateStop, Params{"name": "Depot", "latitude": 1.0, "longitude": 2.0}, "Created stop Depot."},
		{CreatePath, Params{"name": "Spur", "stop_ids": []any{float64(1), float64(2)}}, "Created path Spur."},
		{UpdateRouteStatus, Params{"route_id": float64(1), "status": "Live"}, "Route status updated to Live."},
		{UpdateRouteStatus, Params{"route_id": float64(99), "status": "Live"}, "Route not found."},
		{ListDailyTrips, nil, "Found 1 daily trips."},
		{ListDeployments, nil, "Found 0 deployments."},
		{ListAvailableDrivers, nil, "Found 1 available drivers."},
	}

	for _, tt := range tests {
		t.Run(tt.intent+"/"+tt.message, func(t *testing.T) {
			store := newFixture(t)
			_, msg, err := run(t, store, tt.intent, tt.params)
			if err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if msg != tt.message {
				t.Errorf("message = %q, want %q", msg, tt.message)
			}
		})
	}
}

func TestHandlers_NotFoundPayloadsAreNil(t *testing.T) {
	store := newFixture(t)

	data, _, err := run(t, store, GetTripStatus, Params{"trip_name": "Ghost"})
	if err != nil || data != nil {
		t.Errorf("get_trip_status(missing) = %#v, %v; want nil, nil", data, err)
	}

	data, _, err = run(t, store, UpdateRouteStatus, Params{"route_id": 99, "status": "Live"})
	if err != nil || data != nil {
		t.Errorf("update_route_status(missing) = %#v, %v; want nil, nil", data, err)
	}
}

func TestHandleListStopsForPath_SkipsMissingStops(t *testing.T) {
	store := newFixture(t)

	data, _, err := run(t, store, ListStopsForPath, Params{"path_name": "North Loop"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	stops := data.(map[string]any)["stops"].([]domain.Stop)
	var names []string
	for _, s := range stops {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"Campus Gate", "Tech Park", "Metro Station"}, names); diff != "" {
		t.Errorf("stop order mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleAssignVehicleToTrip(t *testing.T) {
	store := newFixture(t)

	data, msg, err := run(t, store, AssignVehicleToTrip, Params{"trip_id": float64(1), "vehicle_id": float64(2), "driver_id": float64(3)})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if msg != "Vehicle assigned successfully." {
		t.Errorf("message = %q", msg)
	}
	dep := data.(*domain.Deployment)
	if dep.TripID != 1 || dep.VehicleID != 2 || dep.DriverID != 3 {
		t.Errorf("deployment = %+v", dep)
	}

	_, _, err = run(t, store, AssignVehicleToTrip, Params{"trip_id": 1, "vehicle_id": 2})
	if err == nil || err.Error() != `missing required parameter "driver_id"` {
		t.Errorf("missing driver_id error = %v", err)
	}
}

func TestHandleRemoveVehicleFromTrip(t *testing.T) {
	store := newFixture(t)
	if _, err := store.AssignVehicleToTrip(context.Background(), 1, 1, 1); err != nil {
		t.Fatalf("AssignVehicleToTrip() error = %v", err)
	}

	data, msg, err := run(t, store, RemoveVehicleFromTrip, Params{"trip_id": "1"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if msg != "Vehicle removed from trip." {
		t.Errorf("message = %q", msg)
	}
	if diff := cmp.Diff(map[string]any{"removed": true}, data); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleCreateRoute(t *testing.T) {
	store := newFixture(t)
	params := Params{
		"path_id":            float64(1),
		"route_display_name": "Bulk - 09:00",
		"shift_time":         "09:00",
		"direction":          "Inbound",
		"start_point":        "Tech Park",
		"end_point":          "Campus Gate",
		"status":             "Scheduled",
		ConfirmedKey:         true,
	}

	data, msg, err := run(t, store, CreateRoute, params)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if msg != "Route Bulk - 09:00 created." {
		t.Errorf("message = %q", msg)
	}
	route := data.(*domain.Route)
	want := &domain.Route{
		RouteID: route.RouteID, PathID: 1, RouteDisplayName: "Bulk - 09:00", ShiftTime: "09:00",
		Direction: "Inbound", StartPoint: "Tech Park", EndPoint: "Campus Gate", Status: "Scheduled",
	}
	if diff := cmp.Diff(want, route); diff != "" {
		t.Errorf("route mismatch (-want +got):\n%s", diff)
	}

	delete(params, "path_id")
	_, _, err = run(t, store, CreateRoute, params)
	if err == nil || !strings.Contains(err.Error(), "path_id") {
		t.Errorf("missing path_id error = %v", err)
	}
}

func TestListUnassignedVehicles_Idempotent(t *testing.T) {
	store := newFixture(t)

	first, _, err := run(t, store, ListUnassignedVehicles, nil)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	second, _, err := run(t, store, ListUnassignedVehicles, nil)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated calls differ (-first +second):\n%s", diff)
	}
}
