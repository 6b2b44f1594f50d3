package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/movi-transport-agent/internal/storage/memory"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/sqldb"
)

var seedTime = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlStore, err := sqldb.NewSQLite(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]Store{
		"memory": memory.New(),
		"sqlite": sqlStore,
	}
}

func TestLoad(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seeded, err := Load(ctx, store, seedTime)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !seeded {
				t.Fatal("Load() on an empty store reported nothing seeded")
			}

			stops, _ := store.ListStops(ctx)
			if len(stops) != 5 {
				t.Errorf("stops = %d, want 5", len(stops))
			}

			paths, _ := store.ListPaths(ctx)
			gotPaths := map[string][]int64{}
			for _, p := range paths {
				gotPaths[p.PathName] = p.OrderedStopIDs
			}
			wantPaths := map[string][]int64{
				"North Loop": {1, 2, 3},
				"South Loop": {3, 4, 5},
			}
			if diff := cmp.Diff(wantPaths, gotPaths); diff != "" {
				t.Errorf("paths mismatch (-want +got):\n%s", diff)
			}

			routes, _ := store.ListRoutes(ctx)
			if len(routes) != 2 || routes[1].Status != "Live" {
				t.Errorf("routes = %+v", routes)
			}

			vehicles, _ := store.ListVehicles(ctx)
			if len(vehicles) != 3 || vehicles[2].IsActive {
				t.Errorf("vehicles = %+v", vehicles)
			}

			trips, _ := store.ListDailyTrips(ctx)
			if len(trips) != 2 {
				t.Fatalf("trips = %d, want 2", len(trips))
			}
			if trips[0].BookingStatusPercentage != 25 || trips[1].BookingStatusPercentage != 60 {
				t.Errorf("booking percentages = %d, %d", trips[0].BookingStatusPercentage, trips[1].BookingStatusPercentage)
			}
			if !trips[0].ScheduledStart.Equal(seedTime.Add(time.Hour)) {
				t.Errorf("first trip start = %v, want %v", trips[0].ScheduledStart, seedTime.Add(time.Hour))
			}
			if !trips[1].ScheduledStart.Equal(seedTime.Add(8 * time.Hour)) {
				t.Errorf("second trip start = %v, want %v", trips[1].ScheduledStart, seedTime.Add(8*time.Hour))
			}

			deployments, _ := store.ListDeployments(ctx)
			if len(deployments) != 1 {
				t.Fatalf("deployments = %d, want 1", len(deployments))
			}
			d := deployments[0]
			if d.TripID != trips[1].TripID || d.VehicleID != vehicles[1].VehicleID {
				t.Errorf("deployment = %+v", d)
			}

			unassigned, _ := store.ListUnassignedVehicles(ctx)
			if len(unassigned) != 2 {
				t.Errorf("unassigned vehicles = %d, want 2", len(unassigned))
			}
			available, _ := store.ListAvailableDrivers(ctx)
			if len(available) != 2 {
				t.Errorf("available drivers = %d, want 2", len(available))
			}
		})
	}
}

func TestLoad_Idempotent(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := Load(ctx, store, seedTime); err != nil {
				t.Fatalf("first Load() error = %v", err)
			}
			seeded, err := Load(ctx, store, seedTime)
			if err != nil {
				t.Fatalf("second Load() error = %v", err)
			}
			if seeded {
				t.Error("second Load() reported data written")
			}

			stops, _ := store.ListStops(ctx)
			if len(stops) != 5 {
				t.Errorf("stops = %d after reseed, want 5", len(stops))
			}
		})
	}
}

func TestLoad_SkipsNonEmptyStore(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if _, err := store.CreateStop(ctx, "Existing", 1, 1); err != nil {
		t.Fatalf("CreateStop() error = %v", err)
	}

	seeded, err := Load(ctx, store, seedTime)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if seeded {
		t.Error("Load() seeded a store that already had stops")
	}
	trips, _ := store.ListDailyTrips(ctx)
	if len(trips) != 0 {
		t.Errorf("trips = %d, want 0", len(trips))
	}
}
