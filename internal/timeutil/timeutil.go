// Package timeutil
package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

// ErrMalformedTimestamp is returned when a timestamp string is missing one of
// the six required date-time components.
var ErrMalformedTimestamp = fmt.Errorf("timestamp does not conform to required format")

// The API is not consistent about fractional seconds and offsets, so we pull
// the components out ourselves and rebuild a canonical string before parsing.
var timestampPattern = regexp.MustCompile(
	`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})(\.\d*)?([+-]\d{2}:\d{2})?`)

// ParseTimestamp parses a restricted ISO-8601 timestamp (YYYY-MM-DDTHH:MM:SS,
// optionally followed by fractional seconds and a ±HH:MM offset) into a
// timezone-aware time. Fractional seconds are discarded. A missing offset
// defaults to -00:00 (UTC).
func ParseTimestamp(timestamp string) (time.Time, error) {
	match := timestampPattern.FindStringSubmatch(timestamp)
	if match == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMalformedTimestamp, timestamp)
	}

	offset := match[8]
	if offset == "" {
		offset = "-00:00"
	}

	canonical := fmt.Sprintf("%s-%s-%sT%s:%s:%s%s",
		match[1], match[2], match[3], match[4], match[5], match[6], offset)

	t, err := time.Parse("2006-01-02T15:04:05-07:00", canonical)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMalformedTimestamp, timestamp)
	}

	return t, nil
}
