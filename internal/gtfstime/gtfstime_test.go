package gtfstime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  int
	}{
		{name: "Midnight", input: "00:00:00", want: 0},
		{name: "Morning", input: "07:00:00", want: 7 * 3600},
		{name: "SingleDigitHour", input: "7:15:00", want: 7*3600 + 15*60},
		{name: "PaddedFields", input: " 7: 15: 30", want: 7*3600 + 15*60 + 30},
		{name: "EndOfDay", input: "23:59:59", want: 86399},
		{name: "PastMidnight", input: "25:30:00", want: 25*3600 + 30*60},
		{name: "WellPastMidnight", input: "48:00:01", want: 48*3600 + 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTime(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTime_Invalid(t *testing.T) {
	for _, input := range []string{"", "12:00", "12:60:00", "12:00:60", "-1:00:00", "ab:cd:ef", "12:00:00:00"} {
		_, err := ParseTime(input)
		require.Error(t, err, "input %q", input)
		assert.IsType(t, &InvalidTimeError{}, err)
	}
}

func TestFormatTime_RoundTrip(t *testing.T) {
	// Includes hours >= 24: the conversion must round-trip without
	// reducing modulo 24h.
	for _, s := range []string{"00:00:00", "06:05:04", "19:00:00", "24:00:00", "25:13:01", "47:59:59"} {
		secs, err := ParseTime(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatTime(secs))
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("20200104")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 4, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.Saturday, d.Weekday())
	assert.Equal(t, "20200104", FormatDate(d))
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "2020-01-04", "20201301", "abc", "202001"} {
		_, err := ParseDate(input)
		require.Error(t, err, "input %q", input)
		assert.IsType(t, &InvalidDateError{}, err)
	}
}

func TestDateRange(t *testing.T) {
	start, err := ParseDate("20200130")
	require.NoError(t, err)
	end, err := ParseDate("20200202")
	require.NoError(t, err)

	dates := DateRange(start, end)
	require.Len(t, dates, 4)
	assert.Equal(t, "20200130", FormatDate(dates[0]))
	assert.Equal(t, "20200131", FormatDate(dates[1]))
	assert.Equal(t, "20200201", FormatDate(dates[2]))
	assert.Equal(t, "20200202", FormatDate(dates[3]))

	assert.Nil(t, DateRange(end, start))
	assert.Len(t, DateRange(start, start), 1)
}
