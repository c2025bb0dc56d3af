package main

import (
	"math"

	"transitstats.opentransit.org/internal/gtfstime"
	"transitstats.opentransit.org/internal/models"
)

// JSON views of the stats rows. Undefined metrics are NaN internally,
// which encoding/json refuses; they render as null here.
type feedReport struct {
	NumTrips        int      `json:"num_trips"`
	NumRoutes       int      `json:"num_routes"`
	NumStops        int      `json:"num_stops"`
	PeakNumTrips    int      `json:"peak_num_trips"`
	PeakStartTime   string   `json:"peak_start_time"`
	PeakEndTime     string   `json:"peak_end_time"`
	ServiceDistance *float64 `json:"service_distance"`
	ServiceDuration *float64 `json:"service_duration"`
	ServiceSpeed    *float64 `json:"service_speed"`
}

type routeReport struct {
	RouteID          string   `json:"route_id"`
	RouteShortName   string   `json:"route_short_name"`
	DirectionID      *int     `json:"direction_id"`
	NumTrips         int      `json:"num_trips"`
	IsLoop           bool     `json:"is_loop"`
	IsBidirectional  bool     `json:"is_bidirectional"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	MaxHeadway       *float64 `json:"max_headway"`
	MinHeadway       *float64 `json:"min_headway"`
	MeanHeadway      *float64 `json:"mean_headway"`
	PeakNumTrips     int      `json:"peak_num_trips"`
	PeakStartTime    string   `json:"peak_start_time"`
	PeakEndTime      string   `json:"peak_end_time"`
	ServiceDistance  *float64 `json:"service_distance"`
	ServiceDuration  *float64 `json:"service_duration"`
	ServiceSpeed     *float64 `json:"service_speed"`
	MeanTripDistance *float64 `json:"mean_trip_distance"`
	MeanTripDuration *float64 `json:"mean_trip_duration"`
}

type report struct {
	Date        string        `json:"date"`
	Feed        feedReport    `json:"feed"`
	Routes      []routeReport `json:"routes"`
	NumStopRows int           `json:"num_stop_rows"`
}

func nanNull(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func newFeedReport(fs models.FeedStats) feedReport {
	return feedReport{
		NumTrips:        fs.NumTrips,
		NumRoutes:       fs.NumRoutes,
		NumStops:        fs.NumStops,
		PeakNumTrips:    fs.PeakNumTrips,
		PeakStartTime:   gtfstime.FormatTime(fs.PeakStartTime),
		PeakEndTime:     gtfstime.FormatTime(fs.PeakEndTime),
		ServiceDistance: nanNull(fs.ServiceDistance),
		ServiceDuration: nanNull(fs.ServiceDuration),
		ServiceSpeed:    nanNull(fs.ServiceSpeed),
	}
}

func newRouteReports(rows []models.RouteStats) []routeReport {
	out := make([]routeReport, 0, len(rows))
	for _, rs := range rows {
		rep := routeReport{
			RouteID:          rs.RouteID,
			RouteShortName:   rs.RouteShortName,
			NumTrips:         rs.NumTrips,
			IsLoop:           rs.IsLoop,
			IsBidirectional:  rs.IsBidirectional,
			StartTime:        gtfstime.FormatTime(rs.StartTime),
			EndTime:          gtfstime.FormatTime(rs.EndTime),
			MaxHeadway:       nanNull(rs.MaxHeadway),
			MinHeadway:       nanNull(rs.MinHeadway),
			MeanHeadway:      nanNull(rs.MeanHeadway),
			PeakNumTrips:     rs.PeakNumTrips,
			PeakStartTime:    gtfstime.FormatTime(rs.PeakStartTime),
			PeakEndTime:      gtfstime.FormatTime(rs.PeakEndTime),
			ServiceDistance:  nanNull(rs.ServiceDistance),
			ServiceDuration:  nanNull(rs.ServiceDuration),
			ServiceSpeed:     nanNull(rs.ServiceSpeed),
			MeanTripDistance: nanNull(rs.MeanTripDistance),
			MeanTripDuration: nanNull(rs.MeanTripDuration),
		}
		if rs.DirectionID != models.DirectionNone {
			dir := rs.DirectionID
			rep.DirectionID = &dir
		}
		out = append(out, rep)
	}
	return out
}
