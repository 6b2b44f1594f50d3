// Package domain contains the transport entities managed by the backend and
// the types exchanged with the agent pipeline.
package domain

import "time"

// Stop is a physical pick-up or drop-off point.
type Stop struct {
	StopID    int64     `json:"stop_id" db:"stop_id"`
	Name      string    `json:"name" db:"name"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Path is a named, ordered sequence of stops.
type Path struct {
	PathID         int64   `json:"path_id"`
	PathName       string  `json:"path_name"`
	OrderedStopIDs []int64 `json:"ordered_stop_ids"`
}

// Route is a scheduled service running over a path.
type Route struct {
	RouteID          int64  `json:"route_id" db:"route_id"`
	PathID           int64  `json:"path_id" db:"path_id"`
	RouteDisplayName string `json:"route_display_name" db:"route_display_name"`
	ShiftTime        string `json:"shift_time" db:"shift_time"`
	Direction        string `json:"direction" db:"direction"`
	StartPoint       string `json:"start_point" db:"start_point"`
	EndPoint         string `json:"end_point" db:"end_point"`
	Status           string `json:"status" db:"status"`
}

// RouteInput carries the fields required to create a route.
type RouteInput struct {
	PathID           int64  `json:"path_id"`
	RouteDisplayName string `json:"route_display_name"`
	ShiftTime        string `json:"shift_time"`
	Direction        string `json:"direction"`
	StartPoint       string `json:"start_point"`
	EndPoint         string `json:"end_point"`
	Status           string `json:"status"`
}

// Route statuses used by the seed data and the consequence policy.
const (
	RouteStatusScheduled = "Scheduled"
	RouteStatusLive      = "Live"
	RouteStatusInactive  = "Inactive"
)

// Vehicle is a bus or coach that can be deployed on a trip.
type Vehicle struct {
	VehicleID    int64  `json:"vehicle_id" db:"vehicle_id"`
	LicensePlate string `json:"license_plate" db:"license_plate"`
	Type         string `json:"type" db:"type"`
	Capacity     int    `json:"capacity" db:"capacity"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

// Driver operates a vehicle on a trip.
type Driver struct {
	DriverID    int64  `json:"driver_id" db:"driver_id"`
	Name        string `json:"name" db:"name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	IsAvailable bool   `json:"is_available" db:"is_available"`
}

// DailyTrip is one day's run of a route.
type DailyTrip struct {
	TripID                  int64     `json:"trip_id" db:"trip_id"`
	RouteID                 int64     `json:"route_id" db:"route_id"`
	DisplayName             string    `json:"display_name" db:"display_name"`
	BookingStatusPercentage int       `json:"booking_status_percentage" db:"booking_status_percentage"`
	LiveStatus              string    `json:"live_status" db:"live_status"`
	ScheduledStart          time.Time `json:"scheduled_start" db:"scheduled_start"`
}

// Deployment links one trip to one vehicle and one driver.
type Deployment struct {
	DeploymentID int64     `json:"deployment_id" db:"deployment_id"`
	TripID       int64     `json:"trip_id" db:"trip_id"`
	VehicleID    int64     `json:"vehicle_id" db:"vehicle_id"`
	DriverID     int64     `json:"driver_id" db:"driver_id"`
	AssignedAt   time.Time `json:"assigned_at" db:"assigned_at"`
}
