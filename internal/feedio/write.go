package feedio

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/klauspost/compress/zip"

	"transitstats.opentransit.org/internal/feed"
	"transitstats.opentransit.org/internal/gtfstime"
	"transitstats.opentransit.org/internal/logging"
	"transitstats.opentransit.org/internal/models"
)

// CSV row shapes for export. Optional numeric columns are strings so an
// absent value writes as a blank cell instead of a zero.
type calendarRow struct {
	ServiceID string `csv:"service_id"`
	Monday    int    `csv:"monday"`
	Tuesday   int    `csv:"tuesday"`
	Wednesday int    `csv:"wednesday"`
	Thursday  int    `csv:"thursday"`
	Friday    int    `csv:"friday"`
	Saturday  int    `csv:"saturday"`
	Sunday    int    `csv:"sunday"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

type agencyRow struct {
	AgencyID       string `csv:"agency_id"`
	AgencyName     string `csv:"agency_name"`
	AgencyURL      string `csv:"agency_url"`
	AgencyTimezone string `csv:"agency_timezone"`
}

type calendarDateRow struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int    `csv:"exception_type"`
}

type tripRow struct {
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	TripID      string `csv:"trip_id"`
	DirectionID string `csv:"direction_id"`
	ShapeID     string `csv:"shape_id"`
}

type stopTimeRow struct {
	TripID            string `csv:"trip_id"`
	ArrivalTime       string `csv:"arrival_time"`
	DepartureTime     string `csv:"departure_time"`
	StopID            string `csv:"stop_id"`
	StopSequence      int    `csv:"stop_sequence"`
	ShapeDistTraveled string `csv:"shape_dist_traveled"`
}

type routeRow struct {
	RouteID        string `csv:"route_id"`
	RouteShortName string `csv:"route_short_name"`
	RouteType      int    `csv:"route_type"`
}

type stopRow struct {
	StopID        string  `csv:"stop_id"`
	StopName      string  `csv:"stop_name"`
	StopLat       float64 `csv:"stop_lat"`
	StopLon       float64 `csv:"stop_lon"`
	LocationType  string  `csv:"location_type"`
	ParentStation string  `csv:"parent_station"`
}

type shapeRow struct {
	ShapeID           string  `csv:"shape_id"`
	ShapePtLat        float64 `csv:"shape_pt_lat"`
	ShapePtLon        float64 `csv:"shape_pt_lon"`
	ShapePtSequence   int     `csv:"shape_pt_sequence"`
	ShapeDistTraveled string  `csv:"shape_dist_traveled"`
}

// Write exports the snapshot's tables as a zip archive of CSV files at
// path. Tables the snapshot does not carry are omitted from the archive.
func Write(path string, snap *feed.Snapshot, opts Options) error {
	logger := opts.logger().With(slog.String("component", "feed_writer"))
	start := time.Now()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating feed archive: %w", err)
	}
	defer logging.SafeCloseWithLogging(out, logger, "feed_archive")

	zw := zip.NewWriter(out)

	if err := writeTables(zw, snap); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("error finalizing feed archive: %w", err)
	}

	logging.LogOperation(logger, "feed_written",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func writeTables(zw *zip.Writer, snap *feed.Snapshot) error {
	// The tables carry no agency data, but readers require the file.
	agency := []agencyRow{{
		AgencyID:       "transitstats",
		AgencyName:     "transitstats export",
		AgencyURL:      "https://transitstats.opentransit.org",
		AgencyTimezone: "Etc/UTC",
	}}
	if err := writeTable(zw, "agency.txt", agency); err != nil {
		return err
	}
	if rows := calendarRows(snap.Calendar()); len(rows) > 0 {
		if err := writeTable(zw, "calendar.txt", rows); err != nil {
			return err
		}
	}
	if rows := calendarDateRows(snap.CalendarDates()); len(rows) > 0 {
		if err := writeTable(zw, "calendar_dates.txt", rows); err != nil {
			return err
		}
	}
	if rows := routeRows(snap.Routes()); len(rows) > 0 {
		if err := writeTable(zw, "routes.txt", rows); err != nil {
			return err
		}
	}
	if rows := stopRows(snap.Stops()); len(rows) > 0 {
		if err := writeTable(zw, "stops.txt", rows); err != nil {
			return err
		}
	}
	if rows := tripRows(snap.Trips()); len(rows) > 0 {
		if err := writeTable(zw, "trips.txt", rows); err != nil {
			return err
		}
	}
	if rows := stopTimeRows(snap.StopTimes()); len(rows) > 0 {
		if err := writeTable(zw, "stop_times.txt", rows); err != nil {
			return err
		}
	}
	if rows := shapeRows(snap.Shapes()); len(rows) > 0 {
		if err := writeTable(zw, "shapes.txt", rows); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(zw *zip.Writer, name string, rows any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", name, err)
	}
	if err := marshalCSV(rows, w); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}

func marshalCSV(rows any, w io.Writer) error {
	return gocsv.Marshal(rows, w)
}

func calendarRows(entries []models.CalendarEntry) []calendarRow {
	rows := make([]calendarRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, calendarRow{
			ServiceID: e.ServiceID,
			Monday:    boolToInt(e.Weekdays[time.Monday]),
			Tuesday:   boolToInt(e.Weekdays[time.Tuesday]),
			Wednesday: boolToInt(e.Weekdays[time.Wednesday]),
			Thursday:  boolToInt(e.Weekdays[time.Thursday]),
			Friday:    boolToInt(e.Weekdays[time.Friday]),
			Saturday:  boolToInt(e.Weekdays[time.Saturday]),
			Sunday:    boolToInt(e.Weekdays[time.Sunday]),
			StartDate: gtfstime.FormatDate(e.StartDate),
			EndDate:   gtfstime.FormatDate(e.EndDate),
		})
	}
	return rows
}

func calendarDateRows(excs []models.CalendarException) []calendarDateRow {
	rows := make([]calendarDateRow, 0, len(excs))
	for _, exc := range excs {
		rows = append(rows, calendarDateRow{
			ServiceID:     exc.ServiceID,
			Date:          gtfstime.FormatDate(exc.Date),
			ExceptionType: int(exc.Type),
		})
	}
	return rows
}

func tripRows(trips []models.Trip) []tripRow {
	rows := make([]tripRow, 0, len(trips))
	for _, t := range trips {
		row := tripRow{
			RouteID:   t.RouteID,
			ServiceID: t.ServiceID,
			TripID:    t.ID,
			ShapeID:   t.ShapeID,
		}
		if t.DirectionID != models.DirectionNone {
			row.DirectionID = strconv.Itoa(t.DirectionID)
		}
		rows = append(rows, row)
	}
	return rows
}

func stopTimeRows(visits []models.StopVisit) []stopTimeRow {
	rows := make([]stopTimeRow, 0, len(visits))
	for _, v := range visits {
		row := stopTimeRow{
			TripID:        v.TripID,
			ArrivalTime:   gtfstime.FormatTime(v.ArrivalSec),
			DepartureTime: gtfstime.FormatTime(v.DepartureSec),
			StopID:        v.StopID,
			StopSequence:  v.Sequence,
		}
		if !math.IsNaN(v.DistTraveled) {
			row.ShapeDistTraveled = strconv.FormatFloat(v.DistTraveled, 'f', -1, 64)
		}
		rows = append(rows, row)
	}
	return rows
}

func routeRows(routes []models.Route) []routeRow {
	rows := make([]routeRow, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, routeRow{
			RouteID:        r.ID,
			RouteShortName: r.ShortName,
			RouteType:      3,
		})
	}
	return rows
}

func stopRows(stops []models.Stop) []stopRow {
	rows := make([]stopRow, 0, len(stops))
	for _, s := range stops {
		row := stopRow{
			StopID:        s.ID,
			StopName:      s.ID,
			StopLat:       s.Lat,
			StopLon:       s.Lon,
			ParentStation: s.ParentStation,
		}
		if s.LocationType != 0 {
			row.LocationType = strconv.Itoa(s.LocationType)
		}
		rows = append(rows, row)
	}
	return rows
}

func shapeRows(shapes []models.Shape) []shapeRow {
	var rows []shapeRow
	for _, s := range shapes {
		for i, pt := range s.Points {
			row := shapeRow{
				ShapeID:         s.ID,
				ShapePtLat:      pt.Lat,
				ShapePtLon:      pt.Lon,
				ShapePtSequence: i,
			}
			if !math.IsNaN(pt.DistTraveled) {
				row.ShapeDistTraveled = strconv.FormatFloat(pt.DistTraveled, 'f', -1, 64)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
