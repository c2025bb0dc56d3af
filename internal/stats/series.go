package stats

import (
	"time"

	"transitstats.opentransit.org/internal/timeseries"
)

// RouteSeries builds the minute-resolution route time series for the date:
// one interval per active trip, attributed to its route.
func (a *Aggregator) RouteSeries(date time.Time, cfg Config) *timeseries.Series {
	trips := a.TripStatsOn(date, cfg)
	intervals := make([]timeseries.TripInterval, 0, len(trips))
	for _, ts := range trips {
		intervals = append(intervals, timeseries.TripInterval{
			TripID:      ts.TripID,
			EntityID:    ts.RouteID,
			DirectionID: ts.DirectionID,
			StartSec:    ts.StartTime,
			EndSec:      ts.EndTime,
			Distance:    ts.Distance,
		})
	}
	return timeseries.BuildTripSeries(intervals, cfg.SplitDirections)
}

// StopSeries builds the minute-resolution departure-count series per stop
// for the date.
func (a *Aggregator) StopSeries(date time.Time, cfg Config) *timeseries.Series {
	deps := a.departuresOn(date)
	events := make([]timeseries.StopDeparture, 0, len(deps))
	for _, d := range deps {
		events = append(events, timeseries.StopDeparture{
			StopID:       d.stopID,
			DirectionID:  d.direction,
			DepartureSec: d.secs,
		})
	}
	return timeseries.BuildStopSeries(events, cfg.SplitDirections)
}

// FeedSeries rolls the route series up to one network-wide series.
func (a *Aggregator) FeedSeries(date time.Time, cfg Config) *timeseries.Series {
	return timeseries.FeedSeries(a.RouteSeries(date, cfg))
}
