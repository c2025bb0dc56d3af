package stats

import (
	"math"
	"sort"
	"time"

	"transitstats.opentransit.org/internal/models"
)

// RouteStats aggregates trip stats per route, or per (route, direction)
// when cfg.SplitDirections is set. The bidirectional flag is always
// computed over the whole route, even for split rows.
//
// Without a direction split, headways are still computed independently per
// direction and then combined: max headway is the max over directions, min
// the min, and mean the trip-count-weighted mean of the per-direction
// means. Pooling the raw gaps across directions would interleave opposing
// departures and understate the headway whenever the directions have
// unequal trip counts.
func (a *Aggregator) RouteStats(trips []models.TripStats, cfg Config) []models.RouteStats {
	byRoute := make(map[string][]models.TripStats)
	for _, ts := range trips {
		byRoute[ts.RouteID] = append(byRoute[ts.RouteID], ts)
	}

	out := make([]models.RouteStats, 0, len(byRoute))
	for routeID, group := range byRoute {
		bidirectional := distinctDirections(group) > 1
		if cfg.SplitDirections {
			for _, sub := range splitByDirection(group) {
				rs := routeGroupStats(sub.trips, cfg)
				rs.RouteID = routeID
				rs.DirectionID = sub.direction
				rs.IsBidirectional = bidirectional
				out = append(out, rs)
			}
		} else {
			rs := routeGroupStats(group, cfg)
			rs.RouteID = routeID
			rs.DirectionID = models.DirectionNone
			rs.IsBidirectional = bidirectional
			rs.MaxHeadway, rs.MinHeadway, rs.MeanHeadway = combinedHeadways(group, cfg)
			out = append(out, rs)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RouteID != out[j].RouteID {
			return out[i].RouteID < out[j].RouteID
		}
		return out[i].DirectionID < out[j].DirectionID
	})
	return out
}

// RouteStatsOn computes route stats over the trips active on the date.
func (a *Aggregator) RouteStatsOn(date time.Time, cfg Config) []models.RouteStats {
	return a.RouteStats(a.TripStatsOn(date, cfg), cfg)
}

// routeGroupStats fills every field of one aggregate row except the
// identifying keys, the bidirectional flag and, for unsplit groups, the
// combined headways.
func routeGroupStats(group []models.TripStats, cfg Config) models.RouteStats {
	rs := models.RouteStats{
		RouteShortName: group[0].RouteShortName,
		NumTrips:       len(group),
		StartTime:      group[0].StartTime,
		EndTime:        group[0].EndTime,
	}

	starts := make([]int, 0, len(group))
	spans := make([]span, 0, len(group))
	for _, ts := range group {
		rs.IsLoop = rs.IsLoop || ts.IsLoop
		if ts.StartTime < rs.StartTime {
			rs.StartTime = ts.StartTime
		}
		if ts.EndTime > rs.EndTime {
			rs.EndTime = ts.EndTime
		}
		rs.ServiceDistance += ts.Distance
		rs.ServiceDuration += ts.Duration
		starts = append(starts, ts.StartTime)
		spans = append(spans, span{start: ts.StartTime, end: ts.EndTime})
	}

	rs.MaxHeadway, rs.MinHeadway, rs.MeanHeadway = headwayValues(starts, cfg)
	rs.PeakNumTrips, rs.PeakStartTime, rs.PeakEndTime = peakWindow(spans)

	rs.ServiceSpeed = rs.ServiceDistance / rs.ServiceDuration
	rs.MeanTripDistance = rs.ServiceDistance / float64(rs.NumTrips)
	rs.MeanTripDuration = rs.ServiceDuration / float64(rs.NumTrips)
	return rs
}

type directionGroup struct {
	direction int
	trips     []models.TripStats
}

// splitByDirection partitions a route's trips by direction flag, ordered
// by direction.
func splitByDirection(group []models.TripStats) []directionGroup {
	byDir := make(map[int][]models.TripStats)
	for _, ts := range group {
		byDir[ts.DirectionID] = append(byDir[ts.DirectionID], ts)
	}
	dirs := make([]int, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Ints(dirs)

	out := make([]directionGroup, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, directionGroup{direction: dir, trips: byDir[dir]})
	}
	return out
}

func distinctDirections(group []models.TripStats) int {
	dirs := make(map[int]bool)
	for _, ts := range group {
		dirs[ts.DirectionID] = true
	}
	return len(dirs)
}

// combinedHeadways merges per-direction headway stats into one unsplit
// row. Directions with fewer than two qualifying departures contribute
// nothing; all three values are NaN when no direction qualifies.
func combinedHeadways(group []models.TripStats, cfg Config) (max, min, mean float64) {
	max, min = math.NaN(), math.NaN()
	weightedSum, weight := 0.0, 0.0
	for _, sub := range splitByDirection(group) {
		starts := make([]int, 0, len(sub.trips))
		for _, ts := range sub.trips {
			starts = append(starts, ts.StartTime)
		}
		dMax, dMin, dMean := headwayValues(starts, cfg)
		if math.IsNaN(dMean) {
			continue
		}
		if math.IsNaN(max) || dMax > max {
			max = dMax
		}
		if math.IsNaN(min) || dMin < min {
			min = dMin
		}
		weightedSum += dMean * float64(len(sub.trips))
		weight += float64(len(sub.trips))
	}
	if weight == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	return max, min, weightedSum / weight
}
