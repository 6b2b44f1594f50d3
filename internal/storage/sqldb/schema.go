package sqldb

import "fmt"

// schemaStatements renders the transport schema for the store's dialect.
func (s *Store) schemaStatements() []string {
	pk := s.dialect.AutoIncrementClause()
	boolType := s.dialect.BooleanType()
	falseLit := s.dialect.FalseLiteral()
	ts := s.dialect.TimestampType()
	realType := s.dialect.RealType()

	return []string{
		`CREATE TABLE IF NOT EXISTS stops (
stop_id ` + pk + `,
name TEXT NOT NULL,
latitude ` + realType + ` NOT NULL,
longitude ` + realType + ` NOT NULL,
created_at ` + ts + ` NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS paths (
path_id ` + pk + `,
path_name TEXT NOT NULL,
ordered_stop_ids TEXT NOT NULL DEFAULT ''
)`,
		`CREATE TABLE IF NOT EXISTS routes (
route_id ` + pk + `,
path_id INTEGER NOT NULL,
route_display_name TEXT NOT NULL,
shift_time TEXT NOT NULL,
direction TEXT NOT NULL,
start_point TEXT NOT NULL,
end_point TEXT NOT NULL,
status TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
vehicle_id ` + pk + `,
license_plate TEXT NOT NULL,
type TEXT NOT NULL,
capacity INTEGER NOT NULL,
is_active ` + boolType + ` NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS drivers (
driver_id ` + pk + `,
name TEXT NOT NULL,
phone_number TEXT NOT NULL,
is_available ` + boolType + ` NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS daily_trips (
trip_id ` + pk + `,
route_id INTEGER NOT NULL,
display_name TEXT NOT NULL,
booking_status_percentage INTEGER NOT NULL DEFAULT 0,
live_status TEXT NOT NULL,
scheduled_start ` + ts + ` NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS deployments (
deployment_id ` + pk + `,
trip_id INTEGER NOT NULL,
vehicle_id INTEGER NOT NULL,
driver_id INTEGER NOT NULL,
assigned_at ` + ts + ` NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS action_events (
seq ` + pk + `,
id TEXT NOT NULL UNIQUE,
intent TEXT NOT NULL,
outcome TEXT NOT NULL,
message TEXT NOT NULL,
requires_confirmation ` + boolType + ` NOT NULL DEFAULT ` + falseLit + `,
confirmed ` + boolType + ` NOT NULL DEFAULT ` + falseLit + `,
duration_ns BIGINT NOT NULL DEFAULT 0,
created_at ` + ts + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_stops_name ON stops(name)`,
		`CREATE INDEX IF NOT EXISTS idx_paths_name ON paths(path_name)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_path ON routes(path_id)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_trips_name ON daily_trips(display_name)`,
		`CREATE INDEX IF NOT EXISTS idx_deployments_trip ON deployments(trip_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deployments_vehicle ON deployments(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deployments_driver ON deployments(driver_id)`,
	}
}

func (s *Store) initSchema() error {
	for _, stmt := range s.schemaStatements() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
