package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitstats.opentransit.org/internal/models"
)

func key(ind Indicator, entity string) Key {
	return Key{Indicator: ind, EntityID: entity, DirectionID: models.DirectionNone}
}

func TestBuildTripSeries(t *testing.T) {
	// One trip from 08:00 to 08:30 with distance 6.
	s := BuildTripSeries([]TripInterval{{
		TripID:   "t1",
		EntityID: "r1",
		StartSec: 8 * 3600,
		EndSec:   8*3600 + 1800,
		Distance: 6,
	}}, false)

	require.Equal(t, 1, s.Freq())
	require.Equal(t, MinutesPerDay, s.NumBins())

	starts := s.Values(key(NumTripStarts, "r1"))
	require.NotNil(t, starts)
	assert.Equal(t, 1.0, starts[480])
	assert.Equal(t, 0.0, starts[481])

	trips := s.Values(key(NumTrips, "r1"))
	assert.Equal(t, 1.0, trips[480])
	assert.Equal(t, 1.0, trips[509])
	assert.Equal(t, 0.0, trips[510])

	duration := s.Values(key(ServiceDuration, "r1"))
	assert.InDelta(t, 1.0/60, duration[480], 1e-12)

	distance := s.Values(key(ServiceDistance, "r1"))
	assert.InDelta(t, 0.2, distance[480], 1e-12)

	speed := s.Values(key(ServiceSpeed, "r1"))
	assert.InDelta(t, 12.0, speed[480], 1e-9)
	assert.True(t, math.IsNaN(speed[510]))
}

func TestBuildTripSeries_WrapsAroundMidnight(t *testing.T) {
	// 23:50 to 24:10 fills the last ten bins and the first ten.
	s := BuildTripSeries([]TripInterval{{
		TripID:   "t1",
		EntityID: "r1",
		StartSec: 23*3600 + 50*60,
		EndSec:   24*3600 + 10*60,
		Distance: 20,
	}}, false)

	trips := s.Values(key(NumTrips, "r1"))
	assert.Equal(t, 1.0, trips[1430])
	assert.Equal(t, 1.0, trips[1439])
	assert.Equal(t, 1.0, trips[0])
	assert.Equal(t, 1.0, trips[9])
	assert.Equal(t, 0.0, trips[10])
	assert.Equal(t, 0.0, trips[1429])

	// Distance spreads evenly over the twenty filled bins.
	distance := s.Values(key(ServiceDistance, "r1"))
	assert.InDelta(t, 1.0, distance[1435], 1e-12)
	assert.InDelta(t, 1.0, distance[5], 1e-12)

	// The start counts in the start bin, pre-wrap.
	starts := s.Values(key(NumTripStarts, "r1"))
	assert.Equal(t, 1.0, starts[1430])
}

func TestBuildTripSeries_SameBinSkipped(t *testing.T) {
	s := BuildTripSeries([]TripInterval{{
		TripID:   "t1",
		EntityID: "r1",
		StartSec: 8 * 3600,
		EndSec:   8*3600 + 30,
		Distance: 1,
	}}, false)
	assert.Nil(t, s.Values(key(NumTripStarts, "r1")))
	assert.Nil(t, s.Values(key(NumTrips, "r1")))
}

func TestBuildTripSeries_SplitDirections(t *testing.T) {
	s := BuildTripSeries([]TripInterval{
		{TripID: "t1", EntityID: "r1", DirectionID: 0, StartSec: 8 * 3600, EndSec: 9 * 3600},
		{TripID: "t2", EntityID: "r1", DirectionID: 1, StartSec: 8 * 3600, EndSec: 9 * 3600},
	}, true)

	dir0 := s.Values(Key{Indicator: NumTrips, EntityID: "r1", DirectionID: 0})
	dir1 := s.Values(Key{Indicator: NumTrips, EntityID: "r1", DirectionID: 1})
	require.NotNil(t, dir0)
	require.NotNil(t, dir1)
	assert.Equal(t, 1.0, dir0[500])
	assert.Equal(t, 1.0, dir1[500])
}

func TestBuildStopSeries(t *testing.T) {
	s := BuildStopSeries([]StopDeparture{
		{StopID: "s1", DepartureSec: 7 * 3600},
		{StopID: "s1", DepartureSec: 7*3600 + 20},
		{StopID: "s2", DepartureSec: 25 * 3600},
	}, false)

	s1 := s.Values(key(NumTrips, "s1"))
	assert.Equal(t, 2.0, s1[420])

	// 25:00 wraps to the 01:00 bin.
	s2 := s.Values(key(NumTrips, "s2"))
	assert.Equal(t, 1.0, s2[60])
}

func TestDownsample(t *testing.T) {
	s := BuildTripSeries([]TripInterval{{
		TripID:   "t1",
		EntityID: "r1",
		StartSec: 8 * 3600,
		EndSec:   9 * 3600,
		Distance: 60,
	}}, false)

	hourly := s.Downsample(60)
	require.Equal(t, 60, hourly.Freq())
	require.Equal(t, 24, hourly.NumBins())

	// Sums for starts, duration and distance.
	assert.Equal(t, 1.0, hourly.Values(key(NumTripStarts, "r1"))[8])
	assert.InDelta(t, 1.0, hourly.Values(key(ServiceDuration, "r1"))[8], 1e-9)
	assert.InDelta(t, 60.0, hourly.Values(key(ServiceDistance, "r1"))[8], 1e-9)

	// Mean for the concurrency count: one trip all hour.
	assert.InDelta(t, 1.0, hourly.Values(key(NumTrips, "r1"))[8], 1e-9)
	assert.InDelta(t, 0.0, hourly.Values(key(NumTrips, "r1"))[9], 1e-9)

	// Speed recomputed from the hourly sums, not averaged.
	assert.InDelta(t, 60.0, hourly.Values(key(ServiceSpeed, "r1"))[8], 1e-9)
	assert.True(t, math.IsNaN(hourly.Values(key(ServiceSpeed, "r1"))[9]))
}

func TestDownsample_SumsStopDepartures(t *testing.T) {
	s := BuildStopSeries([]StopDeparture{
		{StopID: "s1", DepartureSec: 8*3600 + 5*60},
		{StopID: "s1", DepartureSec: 8*3600 + 40*60},
	}, false)

	// Departure counts are events, so the hourly window holds both
	// departures rather than their per-minute average.
	hourly := s.Downsample(60)
	assert.Equal(t, 2.0, hourly.Values(key(NumTrips, "s1"))[8])
	assert.Equal(t, 0.0, hourly.Values(key(NumTrips, "s1"))[9])
}

func TestDownsample_RefusesToRefine(t *testing.T) {
	s := BuildTripSeries([]TripInterval{{
		TripID: "t1", EntityID: "r1", StartSec: 8 * 3600, EndSec: 9 * 3600,
	}}, false)
	hourly := s.Downsample(60)

	assert.Same(t, hourly, hourly.Downsample(30))
	assert.Same(t, hourly, hourly.Downsample(60))
}

func TestDownsample_MeanOverPartialWindow(t *testing.T) {
	// A trip covering half of an hour averages to 0.5 concurrency.
	s := BuildTripSeries([]TripInterval{{
		TripID: "t1", EntityID: "r1", StartSec: 8 * 3600, EndSec: 8*3600 + 1800,
	}}, false)
	hourly := s.Downsample(60)
	assert.InDelta(t, 0.5, hourly.Values(key(NumTrips, "r1"))[8], 1e-9)
}

func TestFeedSeries(t *testing.T) {
	s := BuildTripSeries([]TripInterval{
		{TripID: "t1", EntityID: "r1", StartSec: 8 * 3600, EndSec: 9 * 3600, Distance: 30},
		{TripID: "t2", EntityID: "r2", StartSec: 8 * 3600, EndSec: 9 * 3600, Distance: 60},
	}, false)

	fs := FeedSeries(s)
	trips := fs.Values(key(NumTrips, ""))
	require.NotNil(t, trips)
	assert.Equal(t, 2.0, trips[500])

	distance := fs.Values(key(ServiceDistance, ""))
	assert.InDelta(t, 1.5, distance[500], 1e-9)

	// Speed is summed distance over summed duration, 90 over 2 hours.
	speed := fs.Values(key(ServiceSpeed, ""))
	assert.InDelta(t, 45.0, speed[500], 1e-9)
}

func TestKeysSorted(t *testing.T) {
	s := BuildTripSeries([]TripInterval{
		{TripID: "t1", EntityID: "r2", StartSec: 8 * 3600, EndSec: 9 * 3600},
		{TripID: "t2", EntityID: "r1", StartSec: 8 * 3600, EndSec: 9 * 3600},
	}, false)
	keys := s.Keys()
	require.NotEmpty(t, keys)
	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		less := prev.Indicator < cur.Indicator ||
			(prev.Indicator == cur.Indicator && prev.EntityID < cur.EntityID)
		assert.True(t, less, "keys out of order at %d", i)
	}
}
