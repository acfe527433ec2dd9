package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/alpaca-trader/internal/timeutil"
)

const clockPath = "/clock"

// MarketClock is the current market day: whether the market is open now and
// when it next opens and closes.
type MarketClock struct {
	Timestamp time.Time
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// Clock reads the market clock.
type Clock struct {
	gw Gateway
}

// NewClock returns a Clock resource backed by gw.
func NewClock(gw Gateway) *Clock {
	return &Clock{gw: gw}
}

// Now fetches the current market clock.
func (c *Clock) Now(ctx context.Context) (MarketClock, error) {
	result, err := c.gw.Get(ctx, clockPath, nil)
	if err != nil {
		return MarketClock{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	fields, ok := result.(map[string]any)
	if !ok {
		return MarketClock{}, fmt.Errorf("%w: unexpected clock payload", ErrInvalidResponse)
	}

	for _, required := range []string{"timestamp", "is_open", "next_open", "next_close"} {
		if _, present := fields[required]; !present {
			return MarketClock{}, missingKey(required)
		}
	}

	clock := MarketClock{}
	clock.IsOpen, _ = fields["is_open"].(bool)

	for key, dst := range map[string]*time.Time{
		"timestamp":  &clock.Timestamp,
		"next_open":  &clock.NextOpen,
		"next_close": &clock.NextClose,
	} {
		raw, _ := fields[key].(string)
		parsed, err := timeutil.ParseTimestamp(raw)
		if err != nil {
			return MarketClock{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		*dst = parsed
	}

	return clock, nil
}
