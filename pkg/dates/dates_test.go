package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKnownFormats(t *testing.T) {
	cases := []string{
		"2024-01-12T08:30:15.123456Z",
		"2024-01-12T08:30:15.123456",
		"2024-01-12T08:30:15Z",
		"2024-01-12T08:30:15",
		"2024-01-12 08:30:15.123456",
		"2024-01-12 08:30:15",
		"01/12/2024 08:30:15 AM",
		"2024/01/12 08:30:15 AM",
		"01/12/24 08:30:15 AM",
		"12 January 2024 08:30:15 AM",
		"12 Jan 2024 08:30:15 AM",
		"January 12, 2024 08:30:15 AM",
		"Jan 12, 2024 08:30:15 AM",
		"2024/01/12 08:30:15",
		"2024-01-12",
	}
	for _, raw := range cases {
		parsed, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2024, parsed.Year(), raw)
		assert.Equal(t, time.January, parsed.Month(), raw)
		assert.Equal(t, 12, parsed.Day(), raw)
	}
}

func TestParseTwelveHourClock(t *testing.T) {
	parsed, err := Parse("01/12/2024 01:30:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 13, parsed.Hour())
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := Parse("12th of January, 2024")
	require.Error(t, err)

	_, err = Parse("")
	require.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	parsed, err := Parse("2024-01-12T08:30:15")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-12T23:59:59", FormatEndOfDay(parsed))
}

func TestDayOfStripsTime(t *testing.T) {
	parsed, err := Parse("2024-01-12T08:30:15")
	require.NoError(t, err)
	day := DayOf(parsed)
	assert.Equal(t, 0, day.Hour())
	assert.Equal(t, 0, day.Minute())
	assert.True(t, day.Before(parsed))
}

func TestFormatSISDate(t *testing.T) {
	parsed, err := Parse("2024-01-12T08:30:15")
	require.NoError(t, err)
	assert.Equal(t, "2024/01/12 00:00:00", FormatSISDate(parsed))
}

func TestToCampusTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:30 UTC in January is 22:30 the previous day in New York.
	converted, err := ToCampusTime("2024-01-12T03:30:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11T22:30:00", converted)
}

func TestSameOrBefore(t *testing.T) {
	a, _ := Parse("2024-01-10T00:00:00")
	b, _ := Parse("2024-01-12T23:59:59")
	assert.True(t, SameOrBefore(a, b))
	assert.True(t, SameOrBefore(a, a))
	assert.False(t, SameOrBefore(b, a))
}
