package exchange

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("BuyingPower parses string numbers", func(t *testing.T) {
		account := NewAccount(NewMockGateway())

		bp, err := account.BuyingPower(ctx)
		require.NoError(t, err)
		assert.Equal(t, 262113.632, bp.BuyingPower)
		assert.Equal(t, 4.0, bp.Multiplier)
	})

	t.Run("Value parses all keys", func(t *testing.T) {
		account := NewAccount(NewMockGateway())

		v, err := account.Value(ctx)
		require.NoError(t, err)
		assert.Equal(t, 65536.05, v.Cash)
		assert.Equal(t, 131056.82, v.Equity)
		assert.Equal(t, 0.0, v.ShortMarketValue)
	})

	t.Run("Info parses status and settings", func(t *testing.T) {
		account := NewAccount(NewMockGateway())

		info, err := account.Info(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ACTIVE", info.Status)
		assert.Equal(t, "USD", info.Currency)
		assert.True(t, info.ShortingEnabled)
		assert.False(t, info.PatternDayTrader)
		assert.Equal(t, 0, info.DaytradeCount)
		assert.Equal(t, 2020, info.CreatedAt.Year())
	})

	t.Run("Missing keys are an invalid response", func(t *testing.T) {
		gw := &staticGateway{response: map[string]any{"cash": "100"}}
		account := NewAccount(gw)

		_, err := account.BuyingPower(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidResponse))
	})

	t.Run("Snapshot is cached between reads", func(t *testing.T) {
		gw := NewMockGateway()
		account := NewAccount(gw)

		_, err := account.BuyingPower(ctx)
		require.NoError(t, err)
		_, err = account.Value(ctx)
		require.NoError(t, err)
		_, err = account.Info(ctx)
		require.NoError(t, err)

		assert.Len(t, gw.Calls, 1)
	})

	t.Run("Transport failure is an invalid response", func(t *testing.T) {
		_, err := NewAccount(&failingGateway{}).Value(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidResponse))
	})
}

// staticGateway answers every Get with a fixed payload.
type staticGateway struct {
	response any
}

func (s *staticGateway) Get(ctx context.Context, path string, query url.Values) (any, error) {
	return s.response, nil
}

func (s *staticGateway) Post(ctx context.Context, path string, body map[string]any) (any, error) {
	return s.response, nil
}

func (s *staticGateway) Patch(ctx context.Context, path string, body map[string]any) (any, error) {
	return s.response, nil
}

func (s *staticGateway) Delete(ctx context.Context, path string) (any, int, error) {
	return s.response, 200, nil
}

func TestClock(t *testing.T) {
	ctx := context.Background()

	t.Run("Parses the market clock", func(t *testing.T) {
		gw := &staticGateway{response: map[string]any{
			"timestamp":  "2021-03-15T10:15:00.612-04:00",
			"is_open":    true,
			"next_open":  "2021-03-16T09:30:00-04:00",
			"next_close": "2021-03-15T16:00:00-04:00",
		}}

		clock, err := NewClock(gw).Now(ctx)
		require.NoError(t, err)
		assert.True(t, clock.IsOpen)
		assert.Equal(t, 10, clock.Timestamp.Hour())
		assert.Equal(t, 16, clock.NextClose.Hour())
	})

	t.Run("Missing keys are an invalid response", func(t *testing.T) {
		gw := &staticGateway{response: map[string]any{"timestamp": "2021-03-15T10:15:00-04:00"}}

		_, err := NewClock(gw).Now(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidResponse))
	})

	t.Run("Transport failure is an invalid response", func(t *testing.T) {
		_, err := NewClock(&failingGateway{}).Now(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidResponse))
	})
}

func TestCalendar(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns market days", func(t *testing.T) {
		gw := &staticGateway{response: []any{
			map[string]any{
				"date": "2021-03-15", "open": "09:30", "close": "16:00",
				"session_open": "0700", "session_close": "1900",
			},
			map[string]any{"date": "2021-03-16", "open": "09:30", "close": "16:00"},
		}}

		days, err := NewCalendar(gw).MarketDays(ctx, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, MarketDay{Date: "2021-03-15", Open: "09:30", Close: "16:00"}, days[0])
	})

	t.Run("Transport failure is an invalid response", func(t *testing.T) {
		_, err := NewCalendar(&failingGateway{}).MarketDays(ctx, time.Time{}, time.Time{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidResponse))
	})
}
