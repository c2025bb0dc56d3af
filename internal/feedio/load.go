package feedio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OneBusAway/go-gtfs"
	"github.com/klauspost/compress/zip"

	"transitstats.opentransit.org/internal/feed"
	"transitstats.opentransit.org/internal/logging"
	"transitstats.opentransit.org/internal/metrics"
	"transitstats.opentransit.org/internal/units"
)

// Options configures dataset loading. The zero value loads kilometers-unit
// feeds with a discard logger and no metrics.
type Options struct {
	// DistUnit declares the unit of the feed's distance values.
	// Defaults to kilometers.
	DistUnit units.Unit
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Load reads a dataset from a zip archive or an extracted directory of
// table files and builds a snapshot.
func Load(path string, opts Options) (*feed.Snapshot, error) {
	logger := opts.logger().With(slog.String("component", "feed_loader"))

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error locating feed: %w", err)
	}

	source := "file"
	start := time.Now()
	var b []byte
	if info.IsDir() {
		source = "directory"
		b, err = zipDirectory(path)
		if err != nil {
			opts.Metrics.ObserveFeedLoad(source, err, time.Since(start))
			return nil, fmt.Errorf("error archiving feed directory: %w", err)
		}
	} else {
		b, err = os.ReadFile(path)
		if err != nil {
			opts.Metrics.ObserveFeedLoad(source, err, time.Since(start))
			return nil, fmt.Errorf("error reading feed file: %w", err)
		}
	}

	snap, err := parseSnapshot(b, opts)
	opts.Metrics.ObserveFeedLoad(source, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	logging.LogOperation(logger, "feed_loaded",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))
	return snap, nil
}

// parseSnapshot turns raw zip bytes into a snapshot.
func parseSnapshot(b []byte, opts Options) (*feed.Snapshot, error) {
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}

	distUnit := opts.DistUnit
	if distUnit == "" {
		distUnit = units.Kilometers
	}
	return feed.NewSnapshot(convertStatic(static, distUnit))
}

// zipDirectory packs the .txt table files of an extracted feed directory
// into an in-memory zip archive the parser accepts.
func zipDirectory(dir string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		src, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		dst, err := zw.Create(entry.Name())
		if err != nil {
			src.Close()
			return nil, err
		}
		if _, err := io.Copy(dst, src); err != nil {
			src.Close()
			return nil, err
		}
		src.Close()
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
