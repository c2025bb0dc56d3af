package feedio

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitstats.opentransit.org/internal/gtfstime"
	"transitstats.opentransit.org/internal/metrics"
	"transitstats.opentransit.org/internal/models"
	"transitstats.opentransit.org/internal/units"
)

var fixtureFiles = map[string]string{
	"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
		"ag,Test Transit,https://example.com,Etc/UTC\n",
	"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
		"r1,ag,1,Main Line,3\n",
	"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
		"s1,First,45.0,7.0,,station1\n" +
		"s2,Second,45.01,7.0,,station1\n" +
		"station1,Station,45.005,7.0,1,\n",
	"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
		"wk,1,1,1,1,1,0,0,20200101,20200131\n",
	"calendar_dates.txt": "service_id,date,exception_type\n" +
		"wk,20200104,1\n" +
		"wk,20200106,2\n",
	"trips.txt": "route_id,service_id,trip_id,direction_id,shape_id\n" +
		"r1,wk,t1,0,sh1\n" +
		"r1,wk,t2,1,sh1\n",
	"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence,shape_dist_traveled\n" +
		"t1,07:00:00,07:00:00,s1,1,0\n" +
		"t1,07:30:00,07:30:00,s2,2,1.1\n" +
		"t2,25:10:00,25:10:00,s2,1,\n" +
		"t2,25:40:00,25:40:00,s1,2,\n",
	"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
		"sh1,45.0,7.0,1\n" +
		"sh1,45.01,7.0,2\n",
}

func fixtureZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range fixtureFiles {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoad_ZipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(path, fixtureZip(t), 0o644))

	snap, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Len(t, snap.Trips(), 2)
	assert.Len(t, snap.Routes(), 1)
	assert.Len(t, snap.Calendar(), 1)
	assert.Len(t, snap.CalendarDates(), 2)
	assert.Equal(t, units.Kilometers, snap.DistUnit())

	entry, ok := snap.CalendarEntry("wk")
	require.True(t, ok)
	assert.True(t, entry.Weekdays[time.Monday])
	assert.False(t, entry.Weekdays[time.Saturday])
	assert.Equal(t, "20200101", gtfstime.FormatDate(entry.StartDate))

	trip, ok := snap.Trip("t2")
	require.True(t, ok)
	assert.Equal(t, "r1", trip.RouteID)
	assert.Equal(t, 1, trip.DirectionID)
	assert.Equal(t, "sh1", trip.ShapeID)

	visits := snap.Visits("t2")
	require.Len(t, visits, 2)
	// Times past 24:00 stay past 24:00.
	assert.Equal(t, 25*3600+600, visits[0].DepartureSec)
	assert.True(t, math.IsNaN(visits[0].DistTraveled))

	visits = snap.Visits("t1")
	require.Len(t, visits, 2)
	assert.InDelta(t, 1.1, visits[1].DistTraveled, 1e-9)

	stop, ok := snap.Stop("s1")
	require.True(t, ok)
	assert.Equal(t, "station1", stop.ParentStation)
	assert.InDelta(t, 45.0, stop.Lat, 1e-9)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	for name, content := range fixtureFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	snap, err := Load(dir, Options{DistUnit: units.Miles})
	require.NoError(t, err)
	assert.Len(t, snap.Trips(), 2)
	assert.Equal(t, units.Miles, snap.DistUnit())
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.zip"), Options{})
	assert.Error(t, err)
}

func TestLoad_RecordsMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(path, fixtureZip(t), 0o644))

	m := metrics.New()
	_, err := Load(path, Options{Metrics: m})
	require.NoError(t, err)
}

func TestFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Api-Key")
		_, _ = w.Write(fixtureZip(t))
	}))
	defer srv.Close()

	f := NewFetcher(FetchConfig{
		AuthHeaderKey:   "X-Api-Key",
		AuthHeaderValue: "secret",
	}, Options{})

	snap, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "secret", gotAuth)
	assert.Len(t, snap.Trips(), 2)
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(FetchConfig{}, Options{})
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "500")
}

func TestWrite_RoundTrip(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(srcPath, fixtureZip(t), 0o644))
	snap, err := Load(srcPath, Options{})
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, Write(outPath, snap, Options{}))

	reloaded, err := Load(outPath, Options{})
	require.NoError(t, err)

	assert.Len(t, reloaded.Trips(), len(snap.Trips()))
	assert.Len(t, reloaded.Routes(), len(snap.Routes()))
	assert.Len(t, reloaded.StopTimes(), len(snap.StopTimes()))
	assert.Len(t, reloaded.Calendar(), len(snap.Calendar()))
	assert.Len(t, reloaded.CalendarDates(), len(snap.CalendarDates()))

	visits := reloaded.Visits("t2")
	require.Len(t, visits, 2)
	assert.Equal(t, 25*3600+600, visits[0].DepartureSec)
	assert.True(t, math.IsNaN(visits[0].DistTraveled))

	trip, ok := reloaded.Trip("t2")
	require.True(t, ok)
	assert.Equal(t, 1, trip.DirectionID)
}

func TestConvert_DirectionFlagNormalization(t *testing.T) {
	assert.Equal(t, 0, directionFlag(0))
	assert.Equal(t, 1, directionFlag(1))
	assert.Equal(t, models.DirectionNone, directionFlag(7))
	assert.Equal(t, models.DirectionNone, directionFlag(-1))
}
