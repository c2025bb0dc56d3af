// Package feedio loads, fetches and writes schedule datasets. It is the
// only package that touches the filesystem or the network; everything
// downstream works on an in-memory snapshot.
package feedio

import (
	"math"
	"time"

	"github.com/OneBusAway/go-gtfs"

	"transitstats.opentransit.org/internal/feed"
	"transitstats.opentransit.org/internal/models"
	"transitstats.opentransit.org/internal/units"
)

// convertStatic maps parsed GTFS static data onto the dataset tables.
// Times become seconds past midnight, absent traveled distances become
// NaN, and direction flags outside {0, 1} collapse to DirectionNone.
func convertStatic(static *gtfs.Static, distUnit units.Unit) feed.Tables {
	tables := feed.Tables{DistUnit: distUnit}

	for _, s := range static.Services {
		if hasWeeklyPattern(s) {
			entry := models.CalendarEntry{
				ServiceID: s.Id,
				StartDate: s.StartDate,
				EndDate:   s.EndDate,
			}
			entry.Weekdays[time.Monday] = s.Monday
			entry.Weekdays[time.Tuesday] = s.Tuesday
			entry.Weekdays[time.Wednesday] = s.Wednesday
			entry.Weekdays[time.Thursday] = s.Thursday
			entry.Weekdays[time.Friday] = s.Friday
			entry.Weekdays[time.Saturday] = s.Saturday
			entry.Weekdays[time.Sunday] = s.Sunday
			tables.Calendar = append(tables.Calendar, entry)
		}
		for _, date := range s.AddedDates {
			tables.CalendarDates = append(tables.CalendarDates, models.CalendarException{
				ServiceID: s.Id,
				Date:      date,
				Type:      models.ExceptionAdded,
			})
		}
		for _, date := range s.RemovedDates {
			tables.CalendarDates = append(tables.CalendarDates, models.CalendarException{
				ServiceID: s.Id,
				Date:      date,
				Type:      models.ExceptionRemoved,
			})
		}
	}

	for _, r := range static.Routes {
		tables.Routes = append(tables.Routes, models.Route{
			ID:        r.Id,
			ShortName: r.ShortName,
		})
	}

	for _, s := range static.Stops {
		// Stops without coordinates (generic nodes, boarding areas)
		// cannot feed distance or loop computation.
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		stop := models.Stop{
			ID:           s.Id,
			Lat:          *s.Latitude,
			Lon:          *s.Longitude,
			LocationType: int(s.Type),
		}
		if s.Parent != nil {
			stop.ParentStation = s.Parent.Id
		}
		tables.Stops = append(tables.Stops, stop)
	}

	for _, t := range static.Trips {
		trip := models.Trip{
			ID:          t.ID,
			ServiceID:   t.Service.Id,
			DirectionID: directionFlag(int(t.DirectionId)),
		}
		if t.Route != nil {
			trip.RouteID = t.Route.Id
		}
		if t.Shape != nil {
			trip.ShapeID = t.Shape.ID
		}
		tables.Trips = append(tables.Trips, trip)

		for _, st := range t.StopTimes {
			dist := math.NaN()
			if st.ShapeDistanceTraveled != nil {
				dist = *st.ShapeDistanceTraveled
			}
			tables.StopTimes = append(tables.StopTimes, models.StopVisit{
				TripID:       t.ID,
				StopID:       st.Stop.Id,
				Sequence:     int(st.StopSequence),
				ArrivalSec:   int(st.ArrivalTime / time.Second),
				DepartureSec: int(st.DepartureTime / time.Second),
				DistTraveled: dist,
			})
		}
	}

	for _, s := range static.Shapes {
		shape := models.Shape{ID: s.ID}
		for _, pt := range s.Points {
			dist := math.NaN()
			if pt.Distance != nil {
				dist = *pt.Distance
			}
			shape.Points = append(shape.Points, models.ShapePoint{
				Lat:          pt.Latitude,
				Lon:          pt.Longitude,
				DistTraveled: dist,
			})
		}
		tables.Shapes = append(tables.Shapes, shape)
	}

	return tables
}

// hasWeeklyPattern distinguishes calendar rows from services that exist
// only through calendar_dates exceptions.
func hasWeeklyPattern(s gtfs.Service) bool {
	if s.Monday || s.Tuesday || s.Wednesday || s.Thursday || s.Friday ||
		s.Saturday || s.Sunday {
		return true
	}
	return !s.StartDate.IsZero() || !s.EndDate.IsZero()
}

func directionFlag(dir int) int {
	if dir == 0 || dir == 1 {
		return dir
	}
	return models.DirectionNone
}
