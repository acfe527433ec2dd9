package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/alpaca-trader/internal/record"
	"github.com/amirphl/alpaca-trader/internal/timeutil"
)

const accountPath = "/account"

// accountRefresh is how long a fetched account snapshot stays fresh.
const accountRefresh = 15 * time.Minute

// BuyingPower is the account's current purchasing capacity.
type BuyingPower struct {
	BuyingPower           float64
	DaytradingBuyingPower float64
	RegTBuyingPower       float64
	Multiplier            float64
}

// Value is the account's current valuation.
type Value struct {
	Cash             float64
	PortfolioValue   float64
	LongMarketValue  float64
	ShortMarketValue float64
	Equity           float64
	LastEquity       float64
	SMA              float64
}

// Info is the account's status and settings.
type Info struct {
	ID                   string
	AccountNumber        string
	CreatedAt            time.Time
	Status               string
	Currency             string
	PatternDayTrader     bool
	TradeSuspendedByUser bool
	TradingBlocked       bool
	TransfersBlocked     bool
	AccountBlocked       bool
	ShortingEnabled      bool
	DaytradeCount        int
}

// Account reads the account snapshot, caching it for accountRefresh between
// fetches. Not safe for concurrent use.
type Account struct {
	gw        Gateway
	snapshot  map[string]any
	fetchedAt time.Time
}

// NewAccount returns an Account resource backed by gw.
func NewAccount(gw Gateway) *Account {
	return &Account{gw: gw}
}

// BuyingPower returns the account's buying power figures.
func (a *Account) BuyingPower(ctx context.Context) (BuyingPower, error) {
	snapshot, err := a.fetch(ctx)
	if err != nil {
		return BuyingPower{}, err
	}

	var out BuyingPower
	for key, dst := range map[string]*float64{
		"buying_power":            &out.BuyingPower,
		"daytrading_buying_power": &out.DaytradingBuyingPower,
		"regt_buying_power":       &out.RegTBuyingPower,
		"multiplier":              &out.Multiplier,
	} {
		v, err := floatKey(snapshot, key)
		if err != nil {
			return BuyingPower{}, err
		}
		*dst = v
	}

	return out, nil
}

// Value returns the account's valuation figures.
func (a *Account) Value(ctx context.Context) (Value, error) {
	snapshot, err := a.fetch(ctx)
	if err != nil {
		return Value{}, err
	}

	var out Value
	for key, dst := range map[string]*float64{
		"cash":               &out.Cash,
		"portfolio_value":    &out.PortfolioValue,
		"long_market_value":  &out.LongMarketValue,
		"short_market_value": &out.ShortMarketValue,
		"equity":             &out.Equity,
		"last_equity":        &out.LastEquity,
		"sma":                &out.SMA,
	} {
		v, err := floatKey(snapshot, key)
		if err != nil {
			return Value{}, err
		}
		*dst = v
	}

	return out, nil
}

// Info returns the account's status and settings.
func (a *Account) Info(ctx context.Context) (Info, error) {
	snapshot, err := a.fetch(ctx)
	if err != nil {
		return Info{}, err
	}

	var out Info

	for key, dst := range map[string]*string{
		"id":             &out.ID,
		"account_number": &out.AccountNumber,
		"status":         &out.Status,
		"currency":       &out.Currency,
	} {
		v, ok := snapshot[key].(string)
		if !ok {
			return Info{}, missingKey(key)
		}
		*dst = v
	}

	for key, dst := range map[string]*bool{
		"pattern_day_trader":      &out.PatternDayTrader,
		"trade_suspended_by_user": &out.TradeSuspendedByUser,
		"trading_blocked":         &out.TradingBlocked,
		"transfers_blocked":       &out.TransfersBlocked,
		"account_blocked":         &out.AccountBlocked,
		"shorting_enabled":        &out.ShortingEnabled,
	} {
		raw, present := snapshot[key]
		if !present {
			return Info{}, missingKey(key)
		}
		coerced, ok := record.Bool(raw)
		if !ok {
			return Info{}, missingKey(key)
		}
		*dst = coerced.(bool)
	}

	rawCount, present := snapshot["daytrade_count"]
	if !present {
		return Info{}, missingKey("daytrade_count")
	}
	count, ok := record.Int(rawCount)
	if !ok {
		return Info{}, missingKey("daytrade_count")
	}
	out.DaytradeCount = count.(int)

	rawCreated, ok := snapshot["created_at"].(string)
	if !ok {
		return Info{}, missingKey("created_at")
	}
	created, err := timeutil.ParseTimestamp(rawCreated)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	out.CreatedAt = created

	return out, nil
}

// fetch returns the cached snapshot when fresh, otherwise hits the API.
func (a *Account) fetch(ctx context.Context) (map[string]any, error) {
	if a.snapshot != nil && time.Since(a.fetchedAt) < accountRefresh {
		return a.snapshot, nil
	}

	result, err := a.gw.Get(ctx, accountPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	snapshot, ok := result.(map[string]any)
	if !ok || len(snapshot) == 0 {
		return nil, fmt.Errorf("%w: unable to fetch account from API", ErrInvalidResponse)
	}

	a.snapshot = snapshot
	a.fetchedAt = time.Now()

	return snapshot, nil
}

func floatKey(snapshot map[string]any, key string) (float64, error) {
	raw, present := snapshot[key]
	if !present {
		return 0, missingKey(key)
	}

	coerced, ok := record.Float(raw)
	if !ok {
		return 0, missingKey(key)
	}

	return coerced.(float64), nil
}

func missingKey(key string) error {
	return fmt.Errorf("%w: response missing required key %s", ErrInvalidResponse, key)
}
