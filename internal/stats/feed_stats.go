package stats

import (
	"time"

	"transitstats.opentransit.org/internal/models"
)

// FeedStats summarizes one service day across the whole dataset: active
// trip/route/stop counts, the network-wide peak concurrency window and the
// service totals. ok is false when no trip is active on the date, in which
// case the zero-value stats are returned.
func (a *Aggregator) FeedStats(date time.Time, cfg Config) (models.FeedStats, bool) {
	active := a.activity.ActiveTripsOn(date)
	if len(active) == 0 {
		return models.FeedStats{}, false
	}

	trips := FilterActive(a.TripStats(cfg), active)

	fs := models.FeedStats{
		NumTrips:  len(active),
		NumRoutes: len(a.activity.ActiveRoutesOn(date)),
		NumStops:  len(a.activity.ActiveStopsOn(date)),
	}

	spans := make([]span, 0, len(trips))
	for _, ts := range trips {
		spans = append(spans, span{start: ts.StartTime, end: ts.EndTime})
		fs.ServiceDistance += ts.Distance
		fs.ServiceDuration += ts.Duration
	}
	fs.PeakNumTrips, fs.PeakStartTime, fs.PeakEndTime = peakWindow(spans)
	fs.ServiceSpeed = fs.ServiceDistance / fs.ServiceDuration
	return fs, true
}
