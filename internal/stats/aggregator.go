// Package stats derives trip, route, stop, station and feed level
// statistics from a dataset snapshot. Every computation is a pure function
// of the snapshot plus its arguments; undefined quantities are NaN and
// propagate, never zero.
package stats

import (
	"math"
	"sort"

	"transitstats.opentransit.org/internal/feed"
	"transitstats.opentransit.org/internal/geom"
	"transitstats.opentransit.org/internal/models"
	"transitstats.opentransit.org/internal/service"
	"transitstats.opentransit.org/internal/units"
)

// Config selects the aggregation options. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// SplitDirections emits one aggregate row per (entity, direction)
	// instead of one per entity.
	SplitDirections bool
	// HeadwayStartSec and HeadwayEndSec bound the inclusive clock window
	// whose departures feed headway computation.
	HeadwayStartSec int
	HeadwayEndSec   int
	// ComputeDistFromShapes ignores recorded per-visit distances and
	// recomputes trip distance from shape geometry.
	ComputeDistFromShapes bool
}

// DefaultConfig returns the standard options: no direction split, headway
// window 07:00 to 19:00, recorded distances preferred over geometry.
func DefaultConfig() Config {
	return Config{
		HeadwayStartSec: models.DefaultHeadwayStartSec,
		HeadwayEndSec:   models.DefaultHeadwayEndSec,
	}
}

// Aggregator computes the statistics of one dataset snapshot. Geometry
// lookups and the unit converter are built once at construction; all
// methods are read-only afterwards.
type Aggregator struct {
	snap       *feed.Snapshot
	activity   *service.ActivityIndex
	stopPoints map[string]geom.Point
	shapeLines map[string]*geom.Polyline
	fromMeters func(float64) float64
}

// NewAggregator builds an Aggregator over a snapshot. It fails only when
// the snapshot's distance unit has no conversion from meters, which
// NewSnapshot already rules out.
func NewAggregator(snap *feed.Snapshot) (*Aggregator, error) {
	fromMeters, err := units.Converter(units.Meters, snap.DistUnit())
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		snap:       snap,
		activity:   service.NewActivityIndex(snap),
		stopPoints: geom.StopPoints(snap.Stops()),
		shapeLines: geom.ShapeLines(snap.Shapes()),
		fromMeters: fromMeters,
	}, nil
}

// Activity returns the activity index the aggregator resolves dates with.
func (a *Aggregator) Activity() *service.ActivityIndex {
	return a.activity
}

// headwayValues computes max, min and mean gaps in minutes between the
// given departure seconds, restricted to the config's clock window. All
// three are NaN when fewer than two departures qualify.
func headwayValues(times []int, cfg Config) (max, min, mean float64) {
	qualifying := make([]int, 0, len(times))
	for _, t := range times {
		if cfg.HeadwayStartSec <= t && t <= cfg.HeadwayEndSec {
			qualifying = append(qualifying, t)
		}
	}
	sort.Ints(qualifying)
	if len(qualifying) < 2 {
		nan := math.NaN()
		return nan, nan, nan
	}
	max = math.Inf(-1)
	min = math.Inf(1)
	sum := 0.0
	for i := 1; i < len(qualifying); i++ {
		gap := float64(qualifying[i]-qualifying[i-1]) / 60
		if gap > max {
			max = gap
		}
		if gap < min {
			min = gap
		}
		sum += gap
	}
	return max, min, sum / float64(len(qualifying)-1)
}

// span is a trip's closed-open active interval in seconds past midnight.
type span struct {
	start, end int
}

// peakWindow finds the maximum number of simultaneously active spans and
// the window over which that maximum holds. Activity uses closed-open
// semantics: a span covers t when start <= t < end. Candidate times are
// the distinct span boundaries; the window is the earliest, then longest,
// contiguous run of candidates at the maximum count.
func peakWindow(spans []span) (peak, startSec, endSec int) {
	if len(spans) == 0 {
		return 0, 0, 0
	}

	seen := make(map[int]bool)
	times := make([]int, 0, 2*len(spans))
	for _, sp := range spans {
		for _, t := range []int{sp.start, sp.end} {
			if !seen[t] {
				seen[t] = true
				times = append(times, t)
			}
		}
	}
	sort.Ints(times)

	counts := make([]int, len(times))
	for i, t := range times {
		for _, sp := range spans {
			if sp.start <= t && t < sp.end {
				counts[i]++
			}
		}
	}

	peak = counts[0]
	for _, c := range counts[1:] {
		if c > peak {
			peak = c
		}
	}

	bestStart, bestEnd := -1, -1
	for i := 0; i < len(counts); {
		if counts[i] != peak {
			i++
			continue
		}
		j := i
		for j+1 < len(counts) && counts[j+1] == peak {
			j++
		}
		if bestStart < 0 || times[j]-times[i] > times[bestEnd]-times[bestStart] {
			bestStart, bestEnd = i, j
		}
		i = j + 1
	}
	return peak, times[bestStart], times[bestEnd]
}
