package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), date)

	_, err = ParseDate("07.09.2026")
	assert.Error(t, err)
	_, err = ParseDate("2026-13-40")
	assert.Error(t, err)
}

func TestKeyRoundTrip(t *testing.T) {
	date, err := ParseDate("2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-07", Key(date))
}

func TestWeekday(t *testing.T) {
	// 2026-09-06 is a Sunday
	sunday, err := ParseDate("2026-09-06")
	require.NoError(t, err)
	assert.Equal(t, 0, Weekday(sunday))
	assert.Equal(t, 1, Weekday(sunday.AddDate(0, 0, 1)))
	assert.Equal(t, 6, Weekday(sunday.AddDate(0, 0, 6)))
}
