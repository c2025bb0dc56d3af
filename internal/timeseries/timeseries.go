// Package timeseries builds minute-resolution series of service volume
// indicators and resamples them to coarser frequencies. One series spans a
// generic 24 hour clock face of 1,440 one-minute bins; trips that run past
// midnight wrap around the face.
package timeseries

import (
	"math"
	"sort"

	"transitstats.opentransit.org/internal/models"
)

// Indicator names one measured quantity of a series.
type Indicator string

const (
	// NumTripStarts counts trips starting in a bin.
	NumTripStarts Indicator = "num_trip_starts"
	// NumTrips counts trips in service during a bin.
	NumTrips Indicator = "num_trips"
	// ServiceDuration accumulates in-service hours per bin.
	ServiceDuration Indicator = "service_duration"
	// ServiceDistance accumulates distance traveled per bin, with each
	// trip's distance spread evenly over its filled bins.
	ServiceDistance Indicator = "service_distance"
	// ServiceSpeed is ServiceDistance over ServiceDuration. It is always
	// recomputed from those two, never accumulated or resampled.
	ServiceSpeed Indicator = "service_speed"
)

// MinutesPerDay is the number of one-minute bins on the clock face.
const MinutesPerDay = 24 * 60

// Key addresses one cell row of a series. DirectionID is DirectionNone
// when the series was built without a direction split.
type Key struct {
	Indicator   Indicator
	EntityID    string
	DirectionID int
}

// Series is a fixed-grid time series: per key, one value per bin. Freq is
// the bin width in minutes. events marks a series whose NumTrips rows hold
// departure counts rather than concurrent-trip counts; such rows sum on
// downsample instead of averaging.
type Series struct {
	freq   int
	bins   int
	events bool
	cells  map[Key][]float64
}

// Freq returns the bin width in minutes.
func (s *Series) Freq() int { return s.freq }

// NumBins returns the number of bins per key.
func (s *Series) NumBins() int { return s.bins }

// Keys returns every populated key, sorted by indicator, entity and
// direction for deterministic iteration.
func (s *Series) Keys() []Key {
	keys := make([]Key, 0, len(s.cells))
	for k := range s.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Indicator != keys[j].Indicator {
			return keys[i].Indicator < keys[j].Indicator
		}
		if keys[i].EntityID != keys[j].EntityID {
			return keys[i].EntityID < keys[j].EntityID
		}
		return keys[i].DirectionID < keys[j].DirectionID
	})
	return keys
}

// Values returns the bin values for a key, or nil when the key is absent.
func (s *Series) Values(k Key) []float64 {
	return s.cells[k]
}

func (s *Series) row(k Key) []float64 {
	if row, ok := s.cells[k]; ok {
		return row
	}
	row := make([]float64, s.bins)
	s.cells[k] = row
	return row
}

// TripInterval is one trip's contribution to a series: its active span on
// the clock, the entity (route or feed) it is attributed to, and its
// distance in the dataset's unit.
type TripInterval struct {
	TripID      string
	EntityID    string
	DirectionID int
	StartSec    int
	EndSec      int
	Distance    float64
}

// BuildTripSeries bins trip intervals into a minute series with the four
// accumulated indicators plus the derived speed. Start and end seconds are
// divided by 60 and reduced modulo 1,440; a trip whose start and end land
// in the same bin contributes nothing. A trip whose end bin precedes its
// start bin wraps around midnight. splitDirections keeps each interval's
// direction in the key; otherwise directions collapse to DirectionNone.
func BuildTripSeries(intervals []TripInterval, splitDirections bool) *Series {
	s := &Series{freq: 1, bins: MinutesPerDay, cells: make(map[Key][]float64)}

	for _, iv := range intervals {
		start := (iv.StartSec / 60) % MinutesPerDay
		end := (iv.EndSec / 60) % MinutesPerDay
		if start == end {
			continue
		}

		dir := models.DirectionNone
		if splitDirections {
			dir = iv.DirectionID
		}
		key := func(ind Indicator) Key {
			return Key{Indicator: ind, EntityID: iv.EntityID, DirectionID: dir}
		}

		var filled []int
		if start < end {
			for b := start; b < end; b++ {
				filled = append(filled, b)
			}
		} else {
			for b := start; b < MinutesPerDay; b++ {
				filled = append(filled, b)
			}
			for b := 0; b < end; b++ {
				filled = append(filled, b)
			}
		}

		s.row(key(NumTripStarts))[start]++

		trips := s.row(key(NumTrips))
		duration := s.row(key(ServiceDuration))
		distance := s.row(key(ServiceDistance))
		perBinDist := iv.Distance / float64(len(filled))
		for _, b := range filled {
			trips[b]++
			duration[b] += 1.0 / 60
			distance[b] += perBinDist
		}
	}

	s.recomputeSpeed()
	return s
}

// StopDeparture is one departure event for a stop series.
type StopDeparture struct {
	StopID       string
	DirectionID  int
	DepartureSec int
}

// BuildStopSeries bins departure counts per stop into a minute series with
// the single NumTrips indicator. The result is an event-count series, so
// its counts sum rather than average when downsampled.
func BuildStopSeries(departures []StopDeparture, splitDirections bool) *Series {
	s := &Series{freq: 1, bins: MinutesPerDay, events: true, cells: make(map[Key][]float64)}
	for _, d := range departures {
		dir := models.DirectionNone
		if splitDirections {
			dir = d.DirectionID
		}
		bin := (d.DepartureSec / 60) % MinutesPerDay
		s.row(Key{Indicator: NumTrips, EntityID: d.StopID, DirectionID: dir})[bin]++
	}
	return s
}

// Downsample coarsens the series to freq minutes per bin. freq should be
// a multiple of the current frequency; a frequency finer than or equal to
// the current one returns the series unchanged, since downsampling never
// refines. Counts of starts, duration and distance sum
// over each window; concurrent-trip counts average, except in an
// event-count series where every row sums; speed is recomputed
// from the summed distance and duration.
func (s *Series) Downsample(freq int) *Series {
	if freq <= s.freq {
		return s
	}

	binsPerWindow := freq / s.freq
	windows := (s.bins + binsPerWindow - 1) / binsPerWindow

	out := &Series{freq: freq, bins: windows, events: s.events, cells: make(map[Key][]float64)}
	for k, row := range s.cells {
		if k.Indicator == ServiceSpeed {
			continue
		}
		coarse := out.row(k)
		for w := 0; w < windows; w++ {
			lo := w * binsPerWindow
			hi := lo + binsPerWindow
			if hi > s.bins {
				hi = s.bins
			}
			sum := 0.0
			for _, v := range row[lo:hi] {
				sum += v
			}
			if k.Indicator == NumTrips && !s.events {
				coarse[w] = sum / float64(hi-lo)
			} else {
				coarse[w] = sum
			}
		}
	}

	out.recomputeSpeed()
	return out
}

// recomputeSpeed rewrites every speed row as distance over duration,
// bin by bin. Bins with no service get NaN, not zero.
func (s *Series) recomputeSpeed() {
	for k, distance := range s.cells {
		if k.Indicator != ServiceDistance {
			continue
		}
		durKey := Key{Indicator: ServiceDuration, EntityID: k.EntityID, DirectionID: k.DirectionID}
		duration, ok := s.cells[durKey]
		if !ok {
			continue
		}
		speed := s.row(Key{Indicator: ServiceSpeed, EntityID: k.EntityID, DirectionID: k.DirectionID})
		for i := range speed {
			if duration[i] == 0 {
				speed[i] = math.NaN()
			} else {
				speed[i] = distance[i] / duration[i]
			}
		}
	}
}

// FeedSeries sums a series across entities per indicator into a single
// feed-wide entity with an empty identifier, then recomputes speed.
// Direction splits collapse: the roll-up is network-wide.
func FeedSeries(s *Series) *Series {
	out := &Series{freq: s.freq, bins: s.bins, events: s.events, cells: make(map[Key][]float64)}
	for k, row := range s.cells {
		if k.Indicator == ServiceSpeed {
			continue
		}
		total := out.row(Key{Indicator: k.Indicator, DirectionID: models.DirectionNone})
		for i, v := range row {
			total[i] += v
		}
	}
	out.recomputeSpeed()
	return out
}
