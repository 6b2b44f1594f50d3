// Package sqldb provides a sqlx-backed implementation of the transport
// storage ports that supports multiple database dialects.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/dialect"
)

// Store is a SQL implementation of ports.StorageProvider.
type Store struct {
	db      *sqlx.DB
	dialect dialect.Dialect
}

var _ ports.StorageProvider = (*Store)(nil)

// Config holds database connection configuration
type Config struct {
	Driver string // Driver name: sqlite, postgres
	DSN    string // Data source name / connection string
}

// New creates a new SQL store with the specified configuration.
func New(cfg Config) (*Store, error) {
	d, err := dialect.FromDriverName(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("unsupported database driver: %w", err)
	}
	if !slices.Contains(sql.Drivers(), d.DriverName()) {
		return nil, fmt.Errorf("database driver %q is not linked into this binary", d.DriverName())
	}

	db, err := sqlx.Open(d.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if n := d.MaxOpenConns(); n > 0 {
		db.SetMaxOpenConns(n)
	}

	// Run dialect-specific initialization (e.g., PRAGMA for SQLite)
	for _, stmt := range d.PragmaStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	store := &Store{db: db, dialect: d}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLite creates a new SQLite store.
func NewSQLite(dbPath string) (*Store, error) {
	return New(Config{Driver: "sqlite", DSN: dbPath})
}

// DB returns the underlying sqlx.DB for advanced operations
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the dialect being used
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	return s.db.Close()
}

// insertReturningID runs an INSERT ... RETURNING <id> statement.
func (s *Store) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowxContext(ctx, s.dialect.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// getOne scans a single row into dest, reporting a miss as (false, nil).
func (s *Store) getOne(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := s.db.GetContext(ctx, dest, s.dialect.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stops

const stopColumns = `stop_id, name, latitude, longitude, created_at`

func (s *Store) ListStops(ctx context.Context) ([]domain.Stop, error) {
	stops := []domain.Stop{}
	if err := s.db.SelectContext(ctx, &stops, `SELECT `+stopColumns+` FROM stops ORDER BY stop_id`); err != nil {
		return nil, fmt.Errorf("failed to list stops: %w", err)
	}
	return stops, nil
}

func (s *Store) GetStopByID(ctx context.Context, id int64) (*domain.Stop, error) {
	var stop domain.Stop
	found, err := s.getOne(ctx, &stop, `SELECT `+stopColumns+` FROM stops WHERE stop_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get stop %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &stop, nil
}

func (s *Store) GetStopByName(ctx context.Context, name string) (*domain.Stop, error) {
	var stop domain.Stop
	found, err := s.getOne(ctx, &stop, `SELECT `+stopColumns+` FROM stops WHERE name = ? ORDER BY stop_id LIMIT 1`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get stop %q: %w", name, err)
	}
	if !found {
		return nil, nil
	}
	return &stop, nil
}

func (s *Store) CreateStop(ctx context.Context, name string, latitude, longitude float64) (*domain.Stop, error) {
	stop := &domain.Stop{
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.insertReturningID(ctx,
		`INSERT INTO stops (name, latitude, longitude, created_at) VALUES (?, ?, ?, ?) RETURNING stop_id`,
		stop.Name, stop.Latitude, stop.Longitude, stop.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create stop: %w", err)
	}
	stop.StopID = id
	return stop, nil
}

// Paths

// pathRow is the stored form of a path; stop ids are kept comma-joined.
type pathRow struct {
	PathID         int64  `db:"path_id"`
	PathName       string `db:"path_name"`
	OrderedStopIDs string `db:"ordered_stop_ids"`
}

func (r pathRow) toDomain() (domain.Path, error) {
	ids, err := decodeStopIDs(r.OrderedStopIDs)
	if err != nil {
		return domain.Path{}, fmt.Errorf("path %d: %w", r.PathID, err)
	}
	return domain.Path{PathID: r.PathID, PathName: r.PathName, OrderedStopIDs: ids}, nil
}

func encodeStopIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func decodeStopIDs(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stop id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) ListPaths(ctx context.Context) ([]domain.Path, error) {
	var rows []pathRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT path_id, path_name, ordered_stop_ids FROM paths ORDER BY path_id`); err != nil {
		return nil, fmt.Errorf("failed to list paths: %w", err)
	}

	paths := make([]domain.Path, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *Store) GetPathByName(ctx context.Context, name string) (*domain.Path, error) {
	var row pathRow
	found, err := s.getOne(ctx, &row,
		`SELECT path_id, path_name, ordered_stop_ids FROM paths WHERE path_name = ? ORDER BY path_id LIMIT 1`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get path %q: %w", name, err)
	}
	if !found {
		return nil, nil
	}
	p, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePath(ctx context.Context, name string, orderedStopIDs []int64) (*domain.Path, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO paths (path_name, ordered_stop_ids) VALUES (?, ?) RETURNING path_id`,
		name, encodeStopIDs(orderedStopIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to create path: %w", err)
	}
	return &domain.Path{
		PathID:         id,
		PathName:       name,
		OrderedStopIDs: append([]int64{}, orderedStopIDs...),
	}, nil
}

// Routes

const routeColumns = `route_id, path_id, route_display_name, shift_time, direction, start_point, end_point, status`

func (s *Store) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	routes := []domain.Route{}
	if err := s.db.SelectContext(ctx, &routes, `SELECT `+routeColumns+` FROM routes ORDER BY route_id`); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

func (s *Store) ListRoutesUsingPath(ctx context.Context, pathID int64) ([]domain.Route, error) {
	routes := []domain.Route{}
	query := s.dialect.Rebind(`SELECT ` + routeColumns + ` FROM routes WHERE path_id = ? ORDER BY route_id`)
	if err := s.db.SelectContext(ctx, &routes, query, pathID); err != nil {
		return nil, fmt.Errorf("failed to list routes for path %d: %w", pathID, err)
	}
	return routes, nil
}

func (s *Store) getRoute(ctx context.Context, routeID int64) (*domain.Route, error) {
	var route domain.Route
	found, err := s.getOne(ctx, &route, `SELECT `+routeColumns+` FROM routes WHERE route_id = ?`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route %d: %w", routeID, err)
	}
	if !found {
		return nil, nil
	}
	return &route, nil
}

func (s *Store) CreateRoute(ctx context.Context, in domain.RouteInput) (*domain.Route, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO routes (path_id, route_display_name, shift_time, direction, start_point, end_point, status)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING route_id`,
		in.PathID, in.RouteDisplayName, in.ShiftTime, in.Direction, in.StartPoint, in.EndPoint, in.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}
	return &domain.Route{
		RouteID:          id,
		PathID:           in.PathID,
		RouteDisplayName: in.RouteDisplayName,
		ShiftTime:        in.ShiftTime,
		Direction:        in.Direction,
		StartPoint:       in.StartPoint,
		EndPoint:         in.EndPoint,
		Status:           in.Status,
	}, nil
}

func (s *Store) UpdateRouteStatus(ctx context.Context, routeID int64, status string) (*domain.Route, error) {
	query := s.dialect.Rebind(`UPDATE routes SET status = ? WHERE route_id = ?`)
	result, err := s.db.ExecContext(ctx, query, status, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to update route status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	return s.getRoute(ctx, routeID)
}

// Vehicles and drivers

const vehicleColumns = `vehicle_id, license_plate, type, capacity, is_active`

func (s *Store) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles := []domain.Vehicle{}
	if err := s.db.SelectContext(ctx, &vehicles, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY vehicle_id`); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *Store) ListUnassignedVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles := []domain.Vehicle{}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE vehicle_id NOT IN (SELECT vehicle_id FROM deployments)
		ORDER BY vehicle_id`
	if err := s.db.SelectContext(ctx, &vehicles, query); err != nil {
		return nil, fmt.Errorf("failed to list unassigned vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *Store) ListAvailableDrivers(ctx context.Context) ([]domain.Driver, error) {
	drivers := []domain.Driver{}
	query := `SELECT driver_id, name, phone_number, is_available FROM drivers
		WHERE driver_id NOT IN (SELECT driver_id FROM deployments)
		ORDER BY driver_id`
	if err := s.db.SelectContext(ctx, &drivers, query); err != nil {
		return nil, fmt.Errorf("failed to list available drivers: %w", err)
	}
	return drivers, nil
}

// Trips

const tripColumns = `trip_id, route_id, display_name, booking_status_percentage, live_status, scheduled_start`

func (s *Store) ListDailyTrips(ctx context.Context) ([]domain.DailyTrip, error) {
	trips := []domain.DailyTrip{}
	if err := s.db.SelectContext(ctx, &trips, `SELECT `+tripColumns+` FROM daily_trips ORDER BY trip_id`); err != nil {
		return nil, fmt.Errorf("failed to list daily trips: %w", err)
	}
	return trips, nil
}

func (s *Store) GetTripByName(ctx context.Context, name string) (*domain.DailyTrip, error) {
	var trip domain.DailyTrip
	found, err := s.getOne(ctx, &trip,
		`SELECT `+tripColumns+` FROM daily_trips WHERE display_name = ? ORDER BY trip_id LIMIT 1`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip %q: %w", name, err)
	}
	if !found {
		return nil, nil
	}
	return &trip, nil
}

func (s *Store) GetTripStatus(ctx context.Context, name string) (*string, error) {
	var status string
	found, err := s.getOne(ctx, &status,
		`SELECT live_status FROM daily_trips WHERE display_name = ? ORDER BY trip_id LIMIT 1`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip status %q: %w", name, err)
	}
	if !found {
		return nil, nil
	}
	return &status, nil
}

// Deployments

const deploymentColumns = `deployment_id, trip_id, vehicle_id, driver_id, assigned_at`

func (s *Store) ListDeployments(ctx context.Context) ([]domain.Deployment, error) {
	deployments := []domain.Deployment{}
	if err := s.db.SelectContext(ctx, &deployments, `SELECT `+deploymentColumns+` FROM deployments ORDER BY deployment_id`); err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	return deployments, nil
}

func (s *Store) AssignVehicleToTrip(ctx context.Context, tripID, vehicleID, driverID int64) (*domain.Deployment, error) {
	d := &domain.Deployment{
		TripID:     tripID,
		VehicleID:  vehicleID,
		DriverID:   driverID,
		AssignedAt: time.Now().UTC(),
	}

	id, err := s.insertReturningID(ctx,
		`INSERT INTO deployments (trip_id, vehicle_id, driver_id, assigned_at) VALUES (?, ?, ?, ?) RETURNING deployment_id`,
		d.TripID, d.VehicleID, d.DriverID, d.AssignedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to assign vehicle to trip: %w", err)
	}
	d.DeploymentID = id
	return d, nil
}

// RemoveVehicleFromTrip deletes the oldest deployment for the trip.
func (s *Store) RemoveVehicleFromTrip(ctx context.Context, tripID int64) (bool, error) {
	query := s.dialect.Rebind(`DELETE FROM deployments WHERE deployment_id = (
		SELECT deployment_id FROM deployments WHERE trip_id = ? ORDER BY deployment_id LIMIT 1)`)
	result, err := s.db.ExecContext(ctx, query, tripID)
	if err != nil {
		return false, fmt.Errorf("failed to remove vehicle from trip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Seeding

func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM stops`); err != nil {
		return false, fmt.Errorf("failed to count stops: %w", err)
	}
	return count == 0, nil
}

func (s *Store) SeedVehicle(ctx context.Context, v *domain.Vehicle) error {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO vehicles (license_plate, type, capacity, is_active) VALUES (?, ?, ?, ?) RETURNING vehicle_id`,
		v.LicensePlate, v.Type, v.Capacity, v.IsActive)
	if err != nil {
		return fmt.Errorf("failed to seed vehicle %s: %w", v.LicensePlate, err)
	}
	v.VehicleID = id
	return nil
}

func (s *Store) SeedDriver(ctx context.Context, d *domain.Driver) error {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO drivers (name, phone_number, is_available) VALUES (?, ?, ?) RETURNING driver_id`,
		d.Name, d.PhoneNumber, d.IsAvailable)
	if err != nil {
		return fmt.Errorf("failed to seed driver %s: %w", d.Name, err)
	}
	d.DriverID = id
	return nil
}

func (s *Store) SeedTrip(ctx context.Context, t *domain.DailyTrip) error {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO daily_trips (route_id, display_name, booking_status_percentage, live_status, scheduled_start)
		VALUES (?, ?, ?, ?, ?) RETURNING trip_id`,
		t.RouteID, t.DisplayName, t.BookingStatusPercentage, t.LiveStatus, t.ScheduledStart)
	if err != nil {
		return fmt.Errorf("failed to seed trip %s: %w", t.DisplayName, err)
	}
	t.TripID = id
	return nil
}

// Action events

func (s *Store) AppendActionEvent(ctx context.Context, event *domain.ActionEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := s.dialect.Rebind(`INSERT INTO action_events
		(id, intent, outcome, message, requires_confirmation, confirmed, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Intent, string(event.Outcome), event.Message,
		event.RequiresConfirmation, event.Confirmed, int64(event.Duration), event.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to append action event: %w", err)
	}
	return nil
}

func (s *Store) ListActionEvents(ctx context.Context, limit int) ([]*domain.ActionEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	events := []*domain.ActionEvent{}
	query := s.dialect.Rebind(`SELECT id, intent, outcome, message, requires_confirmation, confirmed, duration_ns, created_at
		FROM action_events ORDER BY seq DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list action events: %w", err)
	}
	return events, nil
}
