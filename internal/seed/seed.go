// Package seed loads the demonstration data set used by a fresh install.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
)

// Store is what seeding needs from a storage provider.
type Store interface {
	ports.TransportStore
	ports.Seeder
}

type stopSeed struct {
	name      string
	latitude  float64
	longitude float64
}

var stops = []stopSeed{
	{"Campus Gate", 12.9716, 77.5946},
	{"Tech Park", 12.9081, 77.6476},
	{"Metro Station", 12.9352, 77.6245},
	{"City Center", 12.9784, 77.6408},
	{"Warehouse Hub", 12.9901, 77.5802},
}

// Load inserts the seed data set unless the store already holds stops.
// It reports whether anything was written. Trip start times are offset
// from now.
func Load(ctx context.Context, store Store, now time.Time) (bool, error) {
	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check store: %w", err)
	}
	if !empty {
		return false, nil
	}

	stopIDs := make([]int64, 0, len(stops))
	for _, s := range stops {
		stop, err := store.CreateStop(ctx, s.name, s.latitude, s.longitude)
		if err != nil {
			return false, fmt.Errorf("failed to seed stop %q: %w", s.name, err)
		}
		stopIDs = append(stopIDs, stop.StopID)
	}

	north, err := store.CreatePath(ctx, "North Loop", stopIDs[0:3])
	if err != nil {
		return false, fmt.Errorf("failed to seed path: %w", err)
	}
	south, err := store.CreatePath(ctx, "South Loop", stopIDs[2:5])
	if err != nil {
		return false, fmt.Errorf("failed to seed path: %w", err)
	}

	routeInputs := []domain.RouteInput{
		{
			PathID:           north.PathID,
			RouteDisplayName: "Bulk - 00:01",
			ShiftTime:        "00:01",
			Direction:        "Outbound",
			StartPoint:       "Campus Gate",
			EndPoint:         "Tech Park",
			Status:           domain.RouteStatusScheduled,
		},
		{
			PathID:           south.PathID,
			RouteDisplayName: "Bulk - 08:30",
			ShiftTime:        "08:30",
			Direction:        "Inbound",
			StartPoint:       "Warehouse Hub",
			EndPoint:         "Campus Gate",
			Status:           domain.RouteStatusLive,
		},
	}
	routes := make([]*domain.Route, 0, len(routeInputs))
	for _, in := range routeInputs {
		route, err := store.CreateRoute(ctx, in)
		if err != nil {
			return false, fmt.Errorf("failed to seed route %q: %w", in.RouteDisplayName, err)
		}
		routes = append(routes, route)
	}

	vehicles := []*domain.Vehicle{
		{LicensePlate: "KA01AB1234", Type: "Mini Bus", Capacity: 25, IsActive: true},
		{LicensePlate: "KA01AB5678", Type: "Coach", Capacity: 40, IsActive: true},
		{LicensePlate: "KA01AB9012", Type: "Mini Bus", Capacity: 20, IsActive: false},
	}
	for _, v := range vehicles {
		if err := store.SeedVehicle(ctx, v); err != nil {
			return false, fmt.Errorf("failed to seed vehicle %q: %w", v.LicensePlate, err)
		}
	}

	drivers := []*domain.Driver{
		{Name: "Sanjay Kumar", PhoneNumber: "+91-9876543210", IsAvailable: true},
		{Name: "Priya Singh", PhoneNumber: "+91-9876543211", IsAvailable: true},
		{Name: "Arun Das", PhoneNumber: "+91-9876543212", IsAvailable: true},
	}
	for _, d := range drivers {
		if err := store.SeedDriver(ctx, d); err != nil {
			return false, fmt.Errorf("failed to seed driver %q: %w", d.Name, err)
		}
	}

	now = now.UTC()
	trips := []*domain.DailyTrip{
		{
			RouteID:                 routes[0].RouteID,
			DisplayName:             "Bulk - 00:01",
			BookingStatusPercentage: 25,
			LiveStatus:              "Scheduled",
			ScheduledStart:          now.Add(time.Hour),
		},
		{
			RouteID:                 routes[1].RouteID,
			DisplayName:             "Bulk - 08:30",
			BookingStatusPercentage: 60,
			LiveStatus:              "Live",
			ScheduledStart:          now.Add(8 * time.Hour),
		},
	}
	for _, trip := range trips {
		if err := store.SeedTrip(ctx, trip); err != nil {
			return false, fmt.Errorf("failed to seed trip %q: %w", trip.DisplayName, err)
		}
	}

	if _, err := store.AssignVehicleToTrip(ctx, trips[1].TripID, vehicles[1].VehicleID, drivers[1].DriverID); err != nil {
		return false, fmt.Errorf("failed to seed deployment: %w", err)
	}

	return true, nil
}
