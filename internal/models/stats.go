package models

// Default bounds of the clock window used for headway computation,
// in seconds past midnight.
const (
	DefaultHeadwayStartSec = 7 * 3600
	DefaultHeadwayEndSec   = 19 * 3600
)

// LoopDistanceMeters is the endpoint separation below which a trip counts
// as a loop.
const LoopDistanceMeters = 400.0

// TripStats holds the derived quantities of one trip. Distance is in the
// dataset's declared unit, duration in hours, speed in units per hour;
// all three are NaN when undefined and never defaulted to zero.
type TripStats struct {
	TripID         string
	RouteID        string
	RouteShortName string
	DirectionID    int
	ShapeID        string
	NumStops       int
	StartTime      int
	EndTime        int
	StartStopID    string
	EndStopID      string
	IsLoop         bool
	Distance       float64
	Duration       float64
	Speed          float64
}

// RouteStats aggregates trip stats per route, optionally per direction.
// Headways are in minutes and NaN when fewer than two qualifying trip
// starts exist. DirectionID is DirectionNone for unsplit rows.
type RouteStats struct {
	RouteID          string
	RouteShortName   string
	DirectionID      int
	NumTrips         int
	IsLoop           bool
	IsBidirectional  bool
	StartTime        int
	EndTime          int
	MaxHeadway       float64
	MinHeadway       float64
	MeanHeadway      float64
	PeakNumTrips     int
	PeakStartTime    int
	PeakEndTime      int
	ServiceDistance  float64
	ServiceDuration  float64
	ServiceSpeed     float64
	MeanTripDistance float64
	MeanTripDuration float64
}

// StopStats aggregates departures per stop, optionally per direction.
type StopStats struct {
	StopID      string
	DirectionID int
	NumRoutes   int
	NumTrips    int
	MaxHeadway  float64
	MinHeadway  float64
	MeanHeadway float64
	StartTime   int
	EndTime     int
}

// StationStats aggregates departures per parent station, optionally per
// direction.
type StationStats struct {
	StationID   string
	DirectionID int
	NumTrips    int
	MaxHeadway  float64
	MeanHeadway float64
	StartTime   int
	EndTime     int
}

// FeedStats summarizes one service day across the whole dataset.
type FeedStats struct {
	NumTrips        int
	NumRoutes       int
	NumStops        int
	PeakNumTrips    int
	PeakStartTime   int
	PeakEndTime     int
	ServiceDistance float64
	ServiceDuration float64
	ServiceSpeed    float64
}

// TimetableEntry is one stop visit of a timetable, joined with its trip.
type TimetableEntry struct {
	Trip  Trip
	Visit StopVisit
}
