package exchange

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const calendarPath = "/calendar"

// MarketDay is one trading day with its open and close times (24-hour HH:MM).
type MarketDay struct {
	Date  string
	Open  string
	Close string
}

// Calendar reads the market calendar.
type Calendar struct {
	gw Gateway
}

// NewCalendar returns a Calendar resource backed by gw.
func NewCalendar(gw Gateway) *Calendar {
	return &Calendar{gw: gw}
}

// MarketDays returns the trading days in [start, end]. A zero start defaults
// to the beginning of the day 7 days ago, a zero end to the end of today.
func (c *Calendar) MarketDays(ctx context.Context, start, end time.Time) ([]MarketDay, error) {
	if start.IsZero() {
		start = time.Now().AddDate(0, 0, -7)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	}

	if end.IsZero() {
		now := time.Now()
		end = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	}

	result, err := c.gw.Get(ctx, calendarPath, url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	rows, _ := result.([]any)

	days := make([]MarketDay, 0, len(rows))
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			continue
		}

		day := MarketDay{}
		day.Date, _ = fields["date"].(string)
		day.Open, _ = fields["open"].(string)
		day.Close, _ = fields["close"].(string)
		days = append(days, day)
	}

	return days, nil
}
