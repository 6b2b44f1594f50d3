package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
)

func TestMemoryStore_StopsAndPaths(t *testing.T) {
	store := New()
	ctx := context.Background()

	stop, err := store.CreateStop(ctx, "Tech Park", 12.9081, 77.6476)
	if err != nil {
		t.Fatalf("CreateStop() error = %v", err)
	}
	if stop.StopID != 1 {
		t.Errorf("StopID = %d, want 1", stop.StopID)
	}

	got, err := store.GetStopByName(ctx, "Tech Park")
	if err != nil {
		t.Fatalf("GetStopByName() error = %v", err)
	}
	if diff := cmp.Diff(stop, got); diff != "" {
		t.Errorf("GetStopByName() mismatch (-want +got):\n%s", diff)
	}

	ids := []int64{1, 2}
	path, err := store.CreatePath(ctx, "Loop", ids)
	if err != nil {
		t.Fatalf("CreatePath() error = %v", err)
	}
	ids[0] = 99
	path.OrderedStopIDs[1] = 42

	stored, err := store.GetPathByName(ctx, "Loop")
	if err != nil {
		t.Fatalf("GetPathByName() error = %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2}, stored.OrderedStopIDs); diff != "" {
		t.Errorf("stored path aliased caller slice (-want +got):\n%s", diff)
	}
}

func TestMemoryStore_UpdateRouteStatus(t *testing.T) {
	store := New()
	ctx := context.Background()

	route, err := store.CreateRoute(ctx, domain.RouteInput{PathID: 1, RouteDisplayName: "R", Status: "Live"})
	if err != nil {
		t.Fatalf("CreateRoute() error = %v", err)
	}

	updated, err := store.UpdateRouteStatus(ctx, route.RouteID, "Inactive")
	if err != nil {
		t.Fatalf("UpdateRouteStatus() error = %v", err)
	}
	if updated.Status != "Inactive" {
		t.Errorf("Status = %q, want Inactive", updated.Status)
	}

	missing, err := store.UpdateRouteStatus(ctx, 42, "Live")
	if err != nil {
		t.Fatalf("UpdateRouteStatus(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("UpdateRouteStatus(missing) = %+v, want nil", missing)
	}
}

func TestMemoryStore_Deployments(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, plate := range []string{"A", "B"} {
		if err := store.SeedVehicle(ctx, &domain.Vehicle{LicensePlate: plate}); err != nil {
			t.Fatalf("SeedVehicle() error = %v", err)
		}
	}
	if err := store.SeedDriver(ctx, &domain.Driver{Name: "D"}); err != nil {
		t.Fatalf("SeedDriver() error = %v", err)
	}

	if _, err := store.AssignVehicleToTrip(ctx, 7, 1, 1); err != nil {
		t.Fatalf("AssignVehicleToTrip() error = %v", err)
	}

	unassigned, _ := store.ListUnassignedVehicles(ctx)
	if len(unassigned) != 1 || unassigned[0].LicensePlate != "B" {
		t.Errorf("ListUnassignedVehicles() = %+v, want only B", unassigned)
	}
	drivers, _ := store.ListAvailableDrivers(ctx)
	if len(drivers) != 0 {
		t.Errorf("ListAvailableDrivers() = %+v, want none", drivers)
	}

	removed, err := store.RemoveVehicleFromTrip(ctx, 7)
	if err != nil || !removed {
		t.Fatalf("RemoveVehicleFromTrip() = %v, %v; want true, nil", removed, err)
	}
	removed, _ = store.RemoveVehicleFromTrip(ctx, 7)
	if removed {
		t.Error("RemoveVehicleFromTrip() second call = true, want false")
	}
}

func TestMemoryStore_ActionEventsNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.AppendActionEvent(ctx, &domain.ActionEvent{ID: id}); err != nil {
			t.Fatalf("AppendActionEvent() error = %v", err)
		}
	}

	events, err := store.ListActionEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListActionEvents() error = %v", err)
	}
	var ids []string
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Errorf("ListActionEvents() mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStore_ConcurrentAssign(t *testing.T) {
	store := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(trip int64) {
			defer wg.Done()
			if _, err := store.AssignVehicleToTrip(ctx, trip, 1, 1); err != nil {
				t.Errorf("AssignVehicleToTrip() error = %v", err)
			}
		}(int64(i))
	}
	wg.Wait()

	deployments, _ := store.ListDeployments(ctx)
	seen := map[int64]bool{}
	for _, d := range deployments {
		if seen[d.DeploymentID] {
			t.Fatalf("duplicate deployment id %d", d.DeploymentID)
		}
		seen[d.DeploymentID] = true
	}
	if len(deployments) != 20 {
		t.Errorf("ListDeployments() count = %d, want 20", len(deployments))
	}
}
