// Package models defines the row types of the schedule dataset tables and
// the derived statistics records computed from them. The structs here carry
// no behavior beyond trivial accessors; computation lives in the service,
// stats and timeseries packages.
package models

import "time"

// ExceptionType is the kind of a per-date calendar exception.
type ExceptionType int

const (
	// ExceptionAdded marks a date on which service runs despite the
	// weekly pattern.
	ExceptionAdded ExceptionType = 1
	// ExceptionRemoved marks a date on which service is cancelled.
	ExceptionRemoved ExceptionType = 2
)

// DirectionNone marks a trip with no direction flag, and aggregate rows
// computed without a direction split.
const DirectionNone = -1

// CalendarEntry is one row of the calendar table: a weekly recurring
// pattern valid over an inclusive date range. At most one entry exists per
// service identifier.
type CalendarEntry struct {
	ServiceID string
	// Weekdays is indexed by time.Weekday (Sunday = 0).
	Weekdays  [7]bool
	StartDate time.Time
	EndDate   time.Time
}

// RunsOn reports whether the weekly pattern is set for the given weekday.
func (e CalendarEntry) RunsOn(w time.Weekday) bool {
	return e.Weekdays[w]
}

// Covers reports whether date lies in the entry's inclusive date range.
func (e CalendarEntry) Covers(date time.Time) bool {
	return !date.Before(e.StartDate) && !date.After(e.EndDate)
}

// CalendarException is one row of the calendar_dates table: a per-date
// override that takes precedence over the weekly pattern. The source data
// guarantees at most one exception per (service, date) pair.
type CalendarException struct {
	ServiceID string
	Date      time.Time
	Type      ExceptionType
}

// Trip is one row of the trips table. Every trip references exactly one
// service identifier. DirectionID is 0, 1 or DirectionNone.
type Trip struct {
	ID          string
	RouteID     string
	ServiceID   string
	DirectionID int
	ShapeID     string
}

// StopVisit is one row of the stop_times table. Times are seconds past
// midnight of the service day; values >= 86400 belong to the following
// calendar day and are never reduced modulo 24h. DistTraveled is the
// cumulative distance along the trip's shape in the dataset's declared
// unit, or NaN when the column is absent.
type StopVisit struct {
	TripID       string
	StopID       string
	Sequence     int
	ArrivalSec   int
	DepartureSec int
	DistTraveled float64
}

// Route is one row of the routes table.
type Route struct {
	ID        string
	ShortName string
}

// Stop is one row of the stops table.
type Stop struct {
	ID            string
	Lat           float64
	Lon           float64
	LocationType  int
	ParentStation string
}

// LocationTypeStation is the stops.location_type value denoting a station.
const LocationTypeStation = 1

// ShapePoint is one vertex of a shape polyline. DistTraveled follows the
// same convention as StopVisit.DistTraveled.
type ShapePoint struct {
	Lat          float64
	Lon          float64
	DistTraveled float64
}

// Shape is the geographic path a trip follows, as an ordered point list.
type Shape struct {
	ID     string
	Points []ShapePoint
}
