package timeutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("Fractional seconds and offset", func(t *testing.T) {
		parsed, err := ParseTimestamp("2021-03-15T09:30:00.123-05:00")
		require.NoError(t, err)

		assert.Equal(t, 2021, parsed.Year())
		assert.Equal(t, time.March, parsed.Month())
		assert.Equal(t, 15, parsed.Day())
		assert.Equal(t, 9, parsed.Hour())
		assert.Equal(t, 30, parsed.Minute())
		assert.Equal(t, 0, parsed.Second())
		assert.Equal(t, 0, parsed.Nanosecond(), "fractional seconds should be discarded")

		_, offset := parsed.Zone()
		assert.Equal(t, -5*3600, offset)
	})

	t.Run("Missing offset defaults to UTC", func(t *testing.T) {
		parsed, err := ParseTimestamp("2021-03-15T09:30:00")
		require.NoError(t, err)

		_, offset := parsed.Zone()
		assert.Equal(t, 0, offset)
		assert.True(t, parsed.Equal(time.Date(2021, 3, 15, 9, 30, 0, 0, time.UTC)))
	})

	t.Run("Trailing Z is ignored and defaults to UTC", func(t *testing.T) {
		parsed, err := ParseTimestamp("2021-03-15T09:30:00Z")
		require.NoError(t, err)

		_, offset := parsed.Zone()
		assert.Equal(t, 0, offset)
	})

	t.Run("Positive offset", func(t *testing.T) {
		parsed, err := ParseTimestamp("2021-03-15T09:30:00+02:00")
		require.NoError(t, err)

		_, offset := parsed.Zone()
		assert.Equal(t, 2*3600, offset)
	})

	t.Run("Missing seconds component fails", func(t *testing.T) {
		_, err := ParseTimestamp("2021-03-15T09:30")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedTimestamp))
	})

	t.Run("Date only fails", func(t *testing.T) {
		_, err := ParseTimestamp("2021-03-15")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedTimestamp))
	})

	t.Run("Garbage fails", func(t *testing.T) {
		_, err := ParseTimestamp("not a timestamp")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedTimestamp))
	})

	t.Run("Error names the offending input", func(t *testing.T) {
		_, err := ParseTimestamp("2021-03-15")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2021-03-15")
	})
}
