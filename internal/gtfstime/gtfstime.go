// Package gtfstime converts between the textual time and date encodings used
// by GTFS schedule data and the numeric forms used for computation.
//
// Times of day are "HH:MM:SS" strings whose hour may exceed 24 to denote
// trips continuing past midnight on the same service day; numerically they
// are seconds past midnight and are never reduced modulo 24h here. Dates are
// "YYYYMMDD" strings, handled as time.Time values at midnight UTC.
package gtfstime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the GTFS service date layout.
	DateLayout = "20060102"

	// SecondsPerDay is the length of a nominal service day.
	SecondsPerDay = 24 * 60 * 60
)

// InvalidTimeError reports a time-of-day string that does not parse as
// "HH:MM:SS" with minutes and seconds in [0, 60).
type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid GTFS time %q: want HH:MM:SS with hour >= 0", e.Value)
}

// InvalidDateError reports a date string that does not parse as YYYYMMDD.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid GTFS date %q: want YYYYMMDD", e.Value)
}

// ParseTime converts a "HH:MM:SS" string to seconds past midnight.
// The hour may be any non-negative integer, including values >= 24.
func ParseTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, &InvalidTimeError{Value: s}
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 {
		return 0, &InvalidTimeError{Value: s}
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 || m > 59 {
		return 0, &InvalidTimeError{Value: s}
	}
	sec, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || sec < 0 || sec > 59 {
		return 0, &InvalidTimeError{Value: s}
	}

	return h*3600 + m*60 + sec, nil
}

// FormatTime converts seconds past midnight to "HH:MM:SS" form.
// The hour field exceeds 24 for times on the following calendar day,
// so FormatTime(ParseTime(s)) is the identity for every valid s.
func FormatTime(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseDate converts a YYYYMMDD string to a time.Time at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s}
	}
	return t, nil
}

// FormatDate converts a date to its YYYYMMDD string form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange returns every date from start to end inclusive, one day apart.
func DateRange(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
