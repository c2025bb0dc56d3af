package stats

import (
	"math"
	"sort"
	"time"

	"transitstats.opentransit.org/internal/geom"
	"transitstats.opentransit.org/internal/models"
)

// TripStats derives the per-trip statistics of every trip with at least
// one stop visit. Rows are sorted by route, direction and start time.
//
// Distance resolution, in priority order: the recorded per-visit traveled
// distance when present and geometry recomputation was not requested, else
// the difference of the first and last stop's projections onto the trip
// shape, else NaN. The projection difference falls back to the full shape
// length when it is non-positive or the shape self-intersects, mirroring
// how degenerate projections are usually bad data rather than short trips.
func (a *Aggregator) TripStats(cfg Config) []models.TripStats {
	useRecorded := a.snap.HasDistTraveled() && !cfg.ComputeDistFromShapes

	out := make([]models.TripStats, 0, len(a.snap.Trips()))
	for _, trip := range a.snap.Trips() {
		visits := a.snap.Visits(trip.ID)
		if len(visits) == 0 {
			continue
		}
		first, last := visits[0], visits[len(visits)-1]

		ts := models.TripStats{
			TripID:      trip.ID,
			RouteID:     trip.RouteID,
			DirectionID: trip.DirectionID,
			ShapeID:     trip.ShapeID,
			NumStops:    len(visits),
			StartTime:   first.DepartureSec,
			EndTime:     last.DepartureSec,
			StartStopID: first.StopID,
			EndStopID:   last.StopID,
		}
		if route, ok := a.snap.Route(trip.RouteID); ok {
			ts.RouteShortName = route.ShortName
		}

		ts.IsLoop = a.isLoop(first.StopID, last.StopID)
		ts.Duration = float64(ts.EndTime-ts.StartTime) / 3600

		if useRecorded {
			ts.Distance = maxRecordedDist(visits)
		} else {
			ts.Distance = a.shapeDistance(trip.ShapeID, first.StopID, last.StopID)
		}

		if ts.Duration > 0 {
			ts.Speed = ts.Distance / ts.Duration
		} else {
			ts.Speed = math.NaN()
		}

		out = append(out, ts)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RouteID != out[j].RouteID {
			return out[i].RouteID < out[j].RouteID
		}
		if out[i].DirectionID != out[j].DirectionID {
			return out[i].DirectionID < out[j].DirectionID
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].TripID < out[j].TripID
	})
	return out
}

// TripStatsOn restricts TripStats to trips active on the date.
func (a *Aggregator) TripStatsOn(date time.Time, cfg Config) []models.TripStats {
	return FilterActive(a.TripStats(cfg), a.activity.ActiveTripsOn(date))
}

// FilterActive keeps the trip stats whose trip is in the active set,
// preserving order.
func FilterActive(trips []models.TripStats, active map[string]bool) []models.TripStats {
	out := make([]models.TripStats, 0, len(trips))
	for _, ts := range trips {
		if active[ts.TripID] {
			out = append(out, ts)
		}
	}
	return out
}

func (a *Aggregator) isLoop(startStopID, endStopID string) bool {
	start, okS := a.stopPoints[startStopID]
	end, okE := a.stopPoints[endStopID]
	if !okS || !okE {
		return false
	}
	return geom.PointDistance(start, end) < models.LoopDistanceMeters
}

// maxRecordedDist is the largest non-NaN traveled distance of the trip,
// already in the dataset's unit. NaN when every visit lacks the value.
func maxRecordedDist(visits []models.StopVisit) float64 {
	max := math.NaN()
	for _, v := range visits {
		if math.IsNaN(v.DistTraveled) {
			continue
		}
		if math.IsNaN(max) || v.DistTraveled > max {
			max = v.DistTraveled
		}
	}
	return max
}

func (a *Aggregator) shapeDistance(shapeID, startStopID, endStopID string) float64 {
	line, ok := a.shapeLines[shapeID]
	if !ok {
		return math.NaN()
	}
	if !line.IsSimple() {
		return a.fromMeters(line.Length())
	}
	start, okS := a.stopPoints[startStopID]
	end, okE := a.stopPoints[endStopID]
	if !okS || !okE {
		return a.fromMeters(line.Length())
	}
	d := line.Project(end) - line.Project(start)
	if d <= 0 {
		d = line.Length()
	}
	return a.fromMeters(d)
}
