package stats

import (
	"sort"
	"time"

	"transitstats.opentransit.org/internal/models"
)

// departure is one stop visit of an active trip, joined with its trip's
// route and direction.
type departure struct {
	stopID    string
	routeID   string
	direction int
	secs      int
}

func (a *Aggregator) departuresOn(date time.Time) []departure {
	active := a.activity.ActiveTripsOn(date)
	var out []departure
	for tripID := range active {
		trip, ok := a.snap.Trip(tripID)
		if !ok {
			continue
		}
		for _, v := range a.snap.Visits(tripID) {
			out = append(out, departure{
				stopID:    v.StopID,
				routeID:   trip.RouteID,
				direction: trip.DirectionID,
				secs:      v.DepartureSec,
			})
		}
	}
	return out
}

// StopStats aggregates the departures of trips active on the date per
// stop, or per (stop, direction) when cfg.SplitDirections is set. Headway
// gaps are between consecutive departures at the stop inside the clock
// window. Rows are sorted by stop then direction; no active trips yields
// an empty slice.
func (a *Aggregator) StopStats(date time.Time, cfg Config) []models.StopStats {
	type key struct {
		stopID    string
		direction int
	}
	groups := make(map[key][]departure)
	for _, d := range a.departuresOn(date) {
		k := key{stopID: d.stopID, direction: models.DirectionNone}
		if cfg.SplitDirections {
			k.direction = d.direction
		}
		groups[k] = append(groups[k], d)
	}

	out := make([]models.StopStats, 0, len(groups))
	for k, deps := range groups {
		ss := models.StopStats{
			StopID:      k.stopID,
			DirectionID: k.direction,
			NumTrips:    len(deps),
			StartTime:   deps[0].secs,
			EndTime:     deps[0].secs,
		}
		routes := make(map[string]bool)
		times := make([]int, 0, len(deps))
		for _, d := range deps {
			routes[d.routeID] = true
			times = append(times, d.secs)
			if d.secs < ss.StartTime {
				ss.StartTime = d.secs
			}
			if d.secs > ss.EndTime {
				ss.EndTime = d.secs
			}
		}
		ss.NumRoutes = len(routes)
		ss.MaxHeadway, ss.MinHeadway, ss.MeanHeadway = headwayValues(times, cfg)
		out = append(out, ss)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StopID != out[j].StopID {
			return out[i].StopID < out[j].StopID
		}
		return out[i].DirectionID < out[j].DirectionID
	})
	return out
}

// StationStats computes the same departure aggregates as StopStats but
// grouped by parent station, over the stops StopsInStations reports.
// Datasets without station structure yield an empty slice.
func (a *Aggregator) StationStats(date time.Time, cfg Config) []models.StationStats {
	stationOf := make(map[string]string)
	for _, stop := range a.snap.StopsInStations() {
		stationOf[stop.ID] = stop.ParentStation
	}
	if len(stationOf) == 0 {
		return nil
	}

	type key struct {
		stationID string
		direction int
	}
	groups := make(map[key][]departure)
	for _, d := range a.departuresOn(date) {
		station, ok := stationOf[d.stopID]
		if !ok {
			continue
		}
		k := key{stationID: station, direction: models.DirectionNone}
		if cfg.SplitDirections {
			k.direction = d.direction
		}
		groups[k] = append(groups[k], d)
	}

	out := make([]models.StationStats, 0, len(groups))
	for k, deps := range groups {
		ss := models.StationStats{
			StationID:   k.stationID,
			DirectionID: k.direction,
			NumTrips:    len(deps),
			StartTime:   deps[0].secs,
			EndTime:     deps[0].secs,
		}
		times := make([]int, 0, len(deps))
		for _, d := range deps {
			times = append(times, d.secs)
			if d.secs < ss.StartTime {
				ss.StartTime = d.secs
			}
			if d.secs > ss.EndTime {
				ss.EndTime = d.secs
			}
		}
		ss.MaxHeadway, _, ss.MeanHeadway = headwayValues(times, cfg)
		out = append(out, ss)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StationID != out[j].StationID {
			return out[i].StationID < out[j].StationID
		}
		return out[i].DirectionID < out[j].DirectionID
	})
	return out
}
