package feed

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitstats.opentransit.org/internal/gtfstime"
	"transitstats.opentransit.org/internal/models"
	"transitstats.opentransit.org/internal/units"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := gtfstime.ParseDate(s)
	require.NoError(t, err)
	return d
}

func testTables(t *testing.T) Tables {
	t.Helper()
	return Tables{
		Calendar: []models.CalendarEntry{
			{
				ServiceID: "weekday",
				Weekdays: [7]bool{
					time.Monday: true, time.Tuesday: true, time.Wednesday: true,
					time.Thursday: true, time.Friday: true,
				},
				StartDate: date(t, "20200101"),
				EndDate:   date(t, "20200131"),
			},
		},
		CalendarDates: []models.CalendarException{
			{ServiceID: "weekday", Date: date(t, "20200104"), Type: models.ExceptionAdded},
			{ServiceID: "weekday", Date: date(t, "20200106"), Type: models.ExceptionRemoved},
		},
		Trips: []models.Trip{
			{ID: "t1", RouteID: "r1", ServiceID: "weekday", DirectionID: 0, ShapeID: "sh1"},
			{ID: "t2", RouteID: "r1", ServiceID: "weekday", DirectionID: 1},
		},
		StopTimes: []models.StopVisit{
			// Deliberately out of sequence order for t1.
			{TripID: "t1", StopID: "s2", Sequence: 2, ArrivalSec: 25500, DepartureSec: 25500, DistTraveled: math.NaN()},
			{TripID: "t1", StopID: "s1", Sequence: 1, ArrivalSec: 25200, DepartureSec: 25200, DistTraveled: math.NaN()},
			{TripID: "t2", StopID: "s2", Sequence: 1, ArrivalSec: 26000, DepartureSec: 26000, DistTraveled: math.NaN()},
			{TripID: "t2", StopID: "s1", Sequence: 2, ArrivalSec: 26300, DepartureSec: 26300, DistTraveled: math.NaN()},
		},
		Routes: []models.Route{{ID: "r1", ShortName: "1"}},
		Stops: []models.Stop{
			{ID: "s1", Lat: 47.0, Lon: 8.0, ParentStation: "station1"},
			{ID: "s2", Lat: 47.1, Lon: 8.0, ParentStation: "station1"},
			{ID: "station1", Lat: 47.05, Lon: 8.0, LocationType: models.LocationTypeStation},
		},
		Shapes: []models.Shape{
			{ID: "sh1", Points: []models.ShapePoint{{Lat: 47.0, Lon: 8.0}, {Lat: 47.1, Lon: 8.0}}},
		},
	}
}

func TestNewSnapshot_Indices(t *testing.T) {
	snap, err := NewSnapshot(testTables(t))
	require.NoError(t, err)

	entry, ok := snap.CalendarEntry("weekday")
	require.True(t, ok)
	assert.True(t, entry.RunsOn(time.Monday))
	assert.False(t, entry.RunsOn(time.Saturday))

	_, ok = snap.CalendarEntry("nope")
	assert.False(t, ok)

	exc, ok := snap.Exception("weekday", date(t, "20200104"))
	require.True(t, ok)
	assert.Equal(t, models.ExceptionAdded, exc)

	_, ok = snap.Exception("weekday", date(t, "20200105"))
	assert.False(t, ok)

	serviceID, ok := snap.ServiceOfTrip("t1")
	require.True(t, ok)
	assert.Equal(t, "weekday", serviceID)

	// Visits come back ordered by sequence regardless of input order.
	visits := snap.Visits("t1")
	require.Len(t, visits, 2)
	assert.Equal(t, "s1", visits[0].StopID)
	assert.Equal(t, "s2", visits[1].StopID)

	assert.Equal(t, units.Kilometers, snap.DistUnit())
}

func TestNewSnapshot_RejectsUnknownUnit(t *testing.T) {
	tables := testTables(t)
	tables.DistUnit = units.Unit("cubit")
	_, err := NewSnapshot(tables)
	assert.Error(t, err)
}

func TestDatesOfService(t *testing.T) {
	snap, err := NewSnapshot(testTables(t))
	require.NoError(t, err)

	dates, err := snap.DatesOfService()
	require.NoError(t, err)
	require.Len(t, dates, 31)
	assert.Equal(t, "20200101", gtfstime.FormatDate(dates[0]))
	assert.Equal(t, "20200131", gtfstime.FormatDate(dates[30]))
}

func TestDatesOfService_FromCalendarDatesOnly(t *testing.T) {
	tables := testTables(t)
	tables.Calendar = nil
	snap, err := NewSnapshot(tables)
	require.NoError(t, err)

	dates, err := snap.DatesOfService()
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "20200104", gtfstime.FormatDate(dates[0]))
	assert.Equal(t, "20200106", gtfstime.FormatDate(dates[2]))
}

func TestDatesOfService_MissingCalendar(t *testing.T) {
	tables := testTables(t)
	tables.Calendar = nil
	tables.CalendarDates = nil
	snap, err := NewSnapshot(tables)
	require.NoError(t, err)

	_, err = snap.DatesOfService()
	assert.ErrorIs(t, err, ErrMissingCalendar)

	_, err = snap.FirstWeek()
	assert.ErrorIs(t, err, ErrMissingCalendar)
}

func TestFirstWeek(t *testing.T) {
	snap, err := NewSnapshot(testTables(t))
	require.NoError(t, err)

	// 20200101 is a Wednesday; the first Monday is 20200106.
	week, err := snap.FirstWeek()
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.Equal(t, "20200106", gtfstime.FormatDate(week[0]))
	assert.Equal(t, time.Monday, week[0].Weekday())
	assert.Equal(t, "20200112", gtfstime.FormatDate(week[6]))
}

func TestStopsInStations(t *testing.T) {
	snap, err := NewSnapshot(testTables(t))
	require.NoError(t, err)

	stops := snap.StopsInStations()
	require.Len(t, stops, 2)
	for _, s := range stops {
		assert.Equal(t, "station1", s.ParentStation)
		assert.NotEqual(t, models.LocationTypeStation, s.LocationType)
	}
}

func TestTableCountsAndDebugDump(t *testing.T) {
	snap, err := NewSnapshot(testTables(t))
	require.NoError(t, err)

	counts := snap.TableCounts()
	assert.Equal(t, 2, counts["trips"])
	assert.Equal(t, 4, counts["stop_times"])
	assert.Equal(t, 3, counts["stops"])

	dump := snap.DebugDump()
	assert.Contains(t, dump, "stop_times")
}
