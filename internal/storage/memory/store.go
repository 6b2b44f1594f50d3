// Package memory provides an in-memory transport store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
)

// Store is an in-memory implementation of ports.StorageProvider. Records
// are returned by value so callers never alias stored state.
type Store struct {
	mu sync.RWMutex

	stops       []domain.Stop
	paths       []domain.Path
	routes      []domain.Route
	vehicles    []domain.Vehicle
	drivers     []domain.Driver
	trips       []domain.DailyTrip
	deployments []domain.Deployment
	events      []domain.ActionEvent

	nextID map[string]int64
}

var _ ports.StorageProvider = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{nextID: make(map[string]int64)}
}

func (s *Store) allocID(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *Store) Close() error {
	return nil
}

// Stops

func (s *Store) ListStops(ctx context.Context) ([]domain.Stop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Stop{}, s.stops...), nil
}

func (s *Store) GetStopByID(ctx context.Context, id int64) (*domain.Stop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, stop := range s.stops {
		if stop.StopID == id {
			return &stop, nil
		}
	}
	return nil, nil
}

func (s *Store) GetStopByName(ctx context.Context, name string) (*domain.Stop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, stop := range s.stops {
		if stop.Name == name {
			return &stop, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateStop(ctx context.Context, name string, latitude, longitude float64) (*domain.Stop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop := domain.Stop{
		StopID:    s.allocID("stop"),
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		CreatedAt: time.Now().UTC(),
	}
	s.stops = append(s.stops, stop)
	return &stop, nil
}

// Paths

func clonePath(p domain.Path) domain.Path {
	p.OrderedStopIDs = append([]int64{}, p.OrderedStopIDs...)
	return p
}

func (s *Store) ListPaths(ctx context.Context) ([]domain.Path, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]domain.Path, 0, len(s.paths))
	for _, p := range s.paths {
		paths = append(paths, clonePath(p))
	}
	return paths, nil
}

func (s *Store) GetPathByName(ctx context.Context, name string) (*domain.Path, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.paths {
		if p.PathName == name {
			cp := clonePath(p)
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreatePath(ctx context.Context, name string, orderedStopIDs []int64) (*domain.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.Path{
		PathID:         s.allocID("path"),
		PathName:       name,
		OrderedStopIDs: append([]int64{}, orderedStopIDs...),
	}
	s.paths = append(s.paths, p)
	cp := clonePath(p)
	return &cp, nil
}

// Routes

func (s *Store) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Route{}, s.routes...), nil
}

func (s *Store) ListRoutesUsingPath(ctx context.Context, pathID int64) ([]domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	routes := []domain.Route{}
	for _, r := range s.routes {
		if r.PathID == pathID {
			routes = append(routes, r)
		}
	}
	return routes, nil
}

func (s *Store) CreateRoute(ctx context.Context, in domain.RouteInput) (*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := domain.Route{
		RouteID:          s.allocID("route"),
		PathID:           in.PathID,
		RouteDisplayName: in.RouteDisplayName,
		ShiftTime:        in.ShiftTime,
		Direction:        in.Direction,
		StartPoint:       in.StartPoint,
		EndPoint:         in.EndPoint,
		Status:           in.Status,
	}
	s.routes = append(s.routes, r)
	return &r, nil
}

func (s *Store) UpdateRouteStatus(ctx context.Context, routeID int64, status string) (*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.routes {
		if s.routes[i].RouteID == routeID {
			s.routes[i].Status = status
			r := s.routes[i]
			return &r, nil
		}
	}
	return nil, nil
}

// Vehicles and drivers

func (s *Store) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Vehicle{}, s.vehicles...), nil
}

func (s *Store) ListUnassignedVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicles := []domain.Vehicle{}
	for _, v := range s.vehicles {
		deployed := slices.ContainsFunc(s.deployments, func(d domain.Deployment) bool {
			return d.VehicleID == v.VehicleID
		})
		if !deployed {
			vehicles = append(vehicles, v)
		}
	}
	return vehicles, nil
}

func (s *Store) ListAvailableDrivers(ctx context.Context) ([]domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drivers := []domain.Driver{}
	for _, d := range s.drivers {
		deployed := slices.ContainsFunc(s.deployments, func(dep domain.Deployment) bool {
			return dep.DriverID == d.DriverID
		})
		if !deployed {
			drivers = append(drivers, d)
		}
	}
	return drivers, nil
}

// Trips

func (s *Store) ListDailyTrips(ctx context.Context) ([]domain.DailyTrip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DailyTrip{}, s.trips...), nil
}

func (s *Store) GetTripByName(ctx context.Context, name string) (*domain.DailyTrip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trips {
		if t.DisplayName == name {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Store) GetTripStatus(ctx context.Context, name string) (*string, error) {
	trip, err := s.GetTripByName(ctx, name)
	if err != nil || trip == nil {
		return nil, err
	}
	status := trip.LiveStatus
	return &status, nil
}

// Deployments

func (s *Store) ListDeployments(ctx context.Context) ([]domain.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Deployment{}, s.deployments...), nil
}

func (s *Store) AssignVehicleToTrip(ctx context.Context, tripID, vehicleID, driverID int64) (*domain.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := domain.Deployment{
		DeploymentID: s.allocID("deployment"),
		TripID:       tripID,
		VehicleID:    vehicleID,
		DriverID:     driverID,
		AssignedAt:   time.Now().UTC(),
	}
	s.deployments = append(s.deployments, d)
	return &d, nil
}

func (s *Store) RemoveVehicleFromTrip(ctx context.Context, tripID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.deployments, func(d domain.Deployment) bool {
		return d.TripID == tripID
	})
	if i < 0 {
		return false, nil
	}
	s.deployments = slices.Delete(s.deployments, i, i+1)
	return true, nil
}

// Seeding

func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stops) == 0, nil
}

func (s *Store) SeedVehicle(ctx context.Context, v *domain.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.VehicleID = s.allocID("vehicle")
	s.vehicles = append(s.vehicles, *v)
	return nil
}

func (s *Store) SeedDriver(ctx context.Context, d *domain.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.DriverID = s.allocID("driver")
	s.drivers = append(s.drivers, *d)
	return nil
}

func (s *Store) SeedTrip(ctx context.Context, t *domain.DailyTrip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.TripID = s.allocID("trip")
	s.trips = append(s.trips, *t)
	return nil
}

// Action events

func (s *Store) AppendActionEvent(ctx context.Context, event *domain.ActionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *Store) ListActionEvents(ctx context.Context, limit int) ([]*domain.ActionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	events := []*domain.ActionEvent{}
	for i := len(s.events) - 1; i >= 0 && len(events) < limit; i-- {
		ev := s.events[i]
		events = append(events, &ev)
	}
	return events, nil
}
