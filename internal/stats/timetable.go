package stats

import (
	"sort"
	"time"

	"transitstats.opentransit.org/internal/models"
)

// RouteTimetable lists every stop visit of the route's trips active on the
// date. Entries are grouped by trip, trips ordered by first departure and
// visits by sequence within each trip.
func (a *Aggregator) RouteTimetable(routeID string, date time.Time) []models.TimetableEntry {
	active := a.activity.ActiveTripsOn(date)

	type tripBlock struct {
		trip     models.Trip
		firstDep int
		visits   []models.StopVisit
	}
	var blocks []tripBlock
	for tripID := range active {
		trip, ok := a.snap.Trip(tripID)
		if !ok || trip.RouteID != routeID {
			continue
		}
		visits := a.snap.Visits(tripID)
		if len(visits) == 0 {
			continue
		}
		blocks = append(blocks, tripBlock{
			trip:     trip,
			firstDep: visits[0].DepartureSec,
			visits:   visits,
		})
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].firstDep != blocks[j].firstDep {
			return blocks[i].firstDep < blocks[j].firstDep
		}
		return blocks[i].trip.ID < blocks[j].trip.ID
	})

	var out []models.TimetableEntry
	for _, b := range blocks {
		for _, v := range b.visits {
			out = append(out, models.TimetableEntry{Trip: b.trip, Visit: v})
		}
	}
	return out
}

// StopTimetable lists every visit to the stop by trips active on the date,
// ordered by departure time.
func (a *Aggregator) StopTimetable(stopID string, date time.Time) []models.TimetableEntry {
	var out []models.TimetableEntry
	for tripID := range a.activity.ActiveTripsOn(date) {
		trip, ok := a.snap.Trip(tripID)
		if !ok {
			continue
		}
		for _, v := range a.snap.Visits(tripID) {
			if v.StopID == stopID {
				out = append(out, models.TimetableEntry{Trip: trip, Visit: v})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Visit.DepartureSec != out[j].Visit.DepartureSec {
			return out[i].Visit.DepartureSec < out[j].Visit.DepartureSec
		}
		return out[i].Trip.ID < out[j].Trip.ID
	})
	return out
}
