package ports

import (
	"context"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
)

// TransportStore is the record-level repository the backend and the agent
// pipeline operate on. Lookups that may legitimately miss return a nil
// record (or false) with a nil error; only infrastructure failures are
// reported as errors.
type TransportStore interface {
	// Stops
	ListStops(ctx context.Context) ([]domain.Stop, error)
	GetStopByID(ctx context.Context, id int64) (*domain.Stop, error)
	GetStopByName(ctx context.Context, name string) (*domain.Stop, error)
	CreateStop(ctx context.Context, name string, latitude, longitude float64) (*domain.Stop, error)

	// Paths
	ListPaths(ctx context.Context) ([]domain.Path, error)
	GetPathByName(ctx context.Context, name string) (*domain.Path, error)
	CreatePath(ctx context.Context, name string, orderedStopIDs []int64) (*domain.Path, error)

	// Routes
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	ListRoutesUsingPath(ctx context.Context, pathID int64) ([]domain.Route, error)
	CreateRoute(ctx context.Context, in domain.RouteInput) (*domain.Route, error)
	UpdateRouteStatus(ctx context.Context, routeID int64, status string) (*domain.Route, error)

	// Vehicles and drivers
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	ListUnassignedVehicles(ctx context.Context) ([]domain.Vehicle, error)
	ListAvailableDrivers(ctx context.Context) ([]domain.Driver, error)

	// Trips
	ListDailyTrips(ctx context.Context) ([]domain.DailyTrip, error)
	GetTripByName(ctx context.Context, name string) (*domain.DailyTrip, error)
	GetTripStatus(ctx context.Context, name string) (*string, error)

	// Deployments
	ListDeployments(ctx context.Context) ([]domain.Deployment, error)
	AssignVehicleToTrip(ctx context.Context, tripID, vehicleID, driverID int64) (*domain.Deployment, error)
	RemoveVehicleFromTrip(ctx context.Context, tripID int64) (bool, error)
}

// Seeder inserts fixed records. Stores implement it so seed data can be
// loaded without exposing raw insert paths on TransportStore.
type Seeder interface {
	IsEmpty(ctx context.Context) (bool, error)
	SeedVehicle(ctx context.Context, v *domain.Vehicle) error
	SeedDriver(ctx context.Context, d *domain.Driver) error
	SeedTrip(ctx context.Context, t *domain.DailyTrip) error
}

// ActionEventStore persists the agent's action audit log.
type ActionEventStore interface {
	AppendActionEvent(ctx context.Context, event *domain.ActionEvent) error
	// ListActionEvents returns the most recent events, newest first.
	ListActionEvents(ctx context.Context, limit int) ([]*domain.ActionEvent, error)
}

// StorageProvider manages all storage operations.
// Implementations: SQLite (default), in-memory.
type StorageProvider interface {
	TransportStore
	ActionEventStore
	Seeder

	Close() error
}
