// Package feed bundles the schedule dataset tables with the derived lookup
// indices the computation packages depend on. A Snapshot is built once from
// raw tables and is immutable afterwards; replacing any table means building
// a new Snapshot. There is no implicit rebuilding on mutation.
package feed

import (
	"errors"
	"math"
	"sort"
	"time"

	"transitstats.opentransit.org/internal/gtfstime"
	"transitstats.opentransit.org/internal/models"
	"transitstats.opentransit.org/internal/units"
)

// ErrMissingCalendar is returned by date-range queries when the dataset has
// neither a calendar nor a calendar_dates table.
var ErrMissingCalendar = errors.New("dataset has neither calendar nor calendar_dates")

// Tables holds the raw input tables of one dataset. DistUnit declares the
// unit of every DistTraveled value; it defaults to kilometers.
type Tables struct {
	Calendar      []models.CalendarEntry
	CalendarDates []models.CalendarException
	Trips         []models.Trip
	StopTimes     []models.StopVisit
	Routes        []models.Route
	Stops         []models.Stop
	Shapes        []models.Shape
	DistUnit      units.Unit
}

type serviceDate struct {
	serviceID string
	date      string
}

// Snapshot is an immutable view of the tables plus their derived indices.
type Snapshot struct {
	tables Tables

	calendarByService map[string]models.CalendarEntry
	exceptions        map[serviceDate]models.ExceptionType
	serviceByTrip     map[string]string
	tripsByID         map[string]models.Trip
	visitsByTrip      map[string][]models.StopVisit
	routesByID        map[string]models.Route
	stopsByID         map[string]models.Stop
	shapesByID        map[string]models.Shape
}

// NewSnapshot builds a Snapshot and all derived indices from the raw
// tables. Stop visits are sorted by sequence number per trip here, once,
// so downstream passes can assume visit order.
func NewSnapshot(tables Tables) (*Snapshot, error) {
	if tables.DistUnit == "" {
		tables.DistUnit = units.Kilometers
	}
	if !units.Valid(tables.DistUnit) {
		_, err := units.Convert(0, tables.DistUnit, units.Kilometers)
		return nil, err
	}

	s := &Snapshot{
		tables:            tables,
		calendarByService: make(map[string]models.CalendarEntry, len(tables.Calendar)),
		exceptions:        make(map[serviceDate]models.ExceptionType, len(tables.CalendarDates)),
		serviceByTrip:     make(map[string]string, len(tables.Trips)),
		tripsByID:         make(map[string]models.Trip, len(tables.Trips)),
		visitsByTrip:      make(map[string][]models.StopVisit),
		routesByID:        make(map[string]models.Route, len(tables.Routes)),
		stopsByID:         make(map[string]models.Stop, len(tables.Stops)),
		shapesByID:        make(map[string]models.Shape, len(tables.Shapes)),
	}

	for _, entry := range tables.Calendar {
		s.calendarByService[entry.ServiceID] = entry
	}
	for _, exc := range tables.CalendarDates {
		key := serviceDate{serviceID: exc.ServiceID, date: gtfstime.FormatDate(exc.Date)}
		s.exceptions[key] = exc.Type
	}
	for _, trip := range tables.Trips {
		s.serviceByTrip[trip.ID] = trip.ServiceID
		s.tripsByID[trip.ID] = trip
	}
	for _, visit := range tables.StopTimes {
		s.visitsByTrip[visit.TripID] = append(s.visitsByTrip[visit.TripID], visit)
	}
	for tripID := range s.visitsByTrip {
		visits := s.visitsByTrip[tripID]
		sort.Slice(visits, func(i, j int) bool {
			return visits[i].Sequence < visits[j].Sequence
		})
	}
	for _, route := range tables.Routes {
		s.routesByID[route.ID] = route
	}
	for _, stop := range tables.Stops {
		s.stopsByID[stop.ID] = stop
	}
	for _, shape := range tables.Shapes {
		s.shapesByID[shape.ID] = shape
	}

	return s, nil
}

// DistUnit returns the unit of every distance value in the dataset.
func (s *Snapshot) DistUnit() units.Unit {
	return s.tables.DistUnit
}

// Trips returns the trips table.
func (s *Snapshot) Trips() []models.Trip {
	return s.tables.Trips
}

// StopTimes returns the stop_times table in input order.
func (s *Snapshot) StopTimes() []models.StopVisit {
	return s.tables.StopTimes
}

// Routes returns the routes table.
func (s *Snapshot) Routes() []models.Route {
	return s.tables.Routes
}

// Stops returns the stops table.
func (s *Snapshot) Stops() []models.Stop {
	return s.tables.Stops
}

// Shapes returns the shapes table.
func (s *Snapshot) Shapes() []models.Shape {
	return s.tables.Shapes
}

// Calendar returns the calendar table.
func (s *Snapshot) Calendar() []models.CalendarEntry {
	return s.tables.Calendar
}

// CalendarDates returns the calendar_dates table.
func (s *Snapshot) CalendarDates() []models.CalendarException {
	return s.tables.CalendarDates
}

// CalendarEntry returns the weekly pattern for a service identifier.
func (s *Snapshot) CalendarEntry(serviceID string) (models.CalendarEntry, bool) {
	entry, ok := s.calendarByService[serviceID]
	return entry, ok
}

// Exception returns the calendar exception for the (service, date) pair.
func (s *Snapshot) Exception(serviceID string, date time.Time) (models.ExceptionType, bool) {
	t, ok := s.exceptions[serviceDate{serviceID: serviceID, date: gtfstime.FormatDate(date)}]
	return t, ok
}

// ServiceOfTrip returns the service identifier a trip references.
func (s *Snapshot) ServiceOfTrip(tripID string) (string, bool) {
	id, ok := s.serviceByTrip[tripID]
	return id, ok
}

// Trip returns the trip with the given identifier.
func (s *Snapshot) Trip(tripID string) (models.Trip, bool) {
	t, ok := s.tripsByID[tripID]
	return t, ok
}

// Visits returns a trip's stop visits ordered by sequence number.
func (s *Snapshot) Visits(tripID string) []models.StopVisit {
	return s.visitsByTrip[tripID]
}

// Route returns the route with the given identifier.
func (s *Snapshot) Route(routeID string) (models.Route, bool) {
	r, ok := s.routesByID[routeID]
	return r, ok
}

// Stop returns the stop with the given identifier.
func (s *Snapshot) Stop(stopID string) (models.Stop, bool) {
	st, ok := s.stopsByID[stopID]
	return st, ok
}

// Shape returns the shape with the given identifier.
func (s *Snapshot) Shape(shapeID string) (models.Shape, bool) {
	sh, ok := s.shapesByID[shapeID]
	return sh, ok
}

// HasCalendar reports whether a calendar table is present.
func (s *Snapshot) HasCalendar() bool {
	return len(s.tables.Calendar) > 0
}

// HasDistTraveled reports whether any stop visit carries a traveled
// distance measure.
func (s *Snapshot) HasDistTraveled() bool {
	for _, visit := range s.tables.StopTimes {
		if !math.IsNaN(visit.DistTraveled) {
			return true
		}
	}
	return false
}

// DatesOfService returns every date, in chronological order, from the
// earliest to the latest date the dataset covers. The range comes from the
// calendar table, or from calendar_dates when no calendar exists.
func (s *Snapshot) DatesOfService() ([]time.Time, error) {
	var start, end time.Time
	switch {
	case len(s.tables.Calendar) > 0:
		start = s.tables.Calendar[0].StartDate
		end = s.tables.Calendar[0].EndDate
		for _, entry := range s.tables.Calendar[1:] {
			if entry.StartDate.Before(start) {
				start = entry.StartDate
			}
			if entry.EndDate.After(end) {
				end = entry.EndDate
			}
		}
	case len(s.tables.CalendarDates) > 0:
		start = s.tables.CalendarDates[0].Date
		end = s.tables.CalendarDates[0].Date
		for _, exc := range s.tables.CalendarDates[1:] {
			if exc.Date.Before(start) {
				start = exc.Date
			}
			if exc.Date.After(end) {
				end = exc.Date
			}
		}
	default:
		return nil, ErrMissingCalendar
	}
	return gtfstime.DateRange(start, end), nil
}

// FirstWeek returns the first Monday-anchored week the dataset covers. If
// the dataset does not span a full Monday-to-Sunday week, whatever initial
// segment it does cover is returned.
func (s *Snapshot) FirstWeek() ([]time.Time, error) {
	dates, err := s.DatesOfService()
	if err != nil {
		return nil, err
	}
	mondayIndex := -1
	for i, date := range dates {
		if date.Weekday() == time.Monday {
			mondayIndex = i
			break
		}
	}
	if mondayIndex < 0 {
		return nil, nil
	}
	week := make([]time.Time, 0, 7)
	for j := 0; j < 7 && mondayIndex+j < len(dates); j++ {
		week = append(week, dates[mondayIndex+j])
	}
	return week, nil
}

// StopsInStations returns the stops that belong to a parent station, that
// is, non-station stops with a nonblank parent_station.
func (s *Snapshot) StopsInStations() []models.Stop {
	var result []models.Stop
	for _, stop := range s.tables.Stops {
		if stop.LocationType != models.LocationTypeStation && stop.ParentStation != "" {
			result = append(result, stop)
		}
	}
	return result
}
