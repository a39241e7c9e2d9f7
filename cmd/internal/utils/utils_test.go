package utils

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEpochNormalizesOffsets(t *testing.T) {
	utc, err := FromEpoch("2024-06-01T09:00:00Z")
	require.NoError(t, err)

	shifted, err := FromEpoch("2024-06-01T12:30:00+03:30")
	require.NoError(t, err)

	assert.Equal(t, utc, shifted)
	assert.Equal(t, "2024-06-01T09:00:00Z", FormatEpoch(shifted))

	_, err = FromEpoch("2024-06-01 09:00")
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2024-06-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:00:00Z", FormatEpoch(start))
	assert.Equal(t, "2024-06-02T00:00:00Z", FormatEpoch(end))

	tehran, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)
	start, _, err = DayBounds("2024-06-01", tehran)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-31T20:30:00Z", FormatEpoch(start))

	_, _, err = DayBounds("01/06/2024", time.UTC)
	assert.Error(t, err)
}

func TestTruncateMinute(t *testing.T) {
	at, err := FromEpoch("2024-06-01T09:05:42Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T09:05:00Z", FormatEpoch(TruncateMinute(at)))
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("10:30")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour+30*time.Minute, d)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	req := struct {
		Name  string
		Tags  []string
		Count int
	}{Name: "  Alice ", Tags: []string{" a", "b "}, Count: 3}

	Sanitize(&req)
	assert.Equal(t, "Alice", req.Name)
	assert.Equal(t, []string{"a", "b"}, req.Tags)
	assert.Equal(t, 3, req.Count)

	assert.Panics(t, func() { Sanitize(req) })
}
