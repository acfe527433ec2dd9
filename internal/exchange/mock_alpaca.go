package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockGateway simulates the brokerage in memory: placed orders are echoed
// back as accepted with a server-assigned id and can then be listed, fetched,
// amended and canceled. Used by the dry-run mode and the resource tests.
type MockGateway struct {
	// Calls records every request as "METHOD path", in order.
	Calls []string

	orders []map[string]any
	byID   map[string]map[string]any
}

// NewMockGateway returns an empty MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{byID: make(map[string]map[string]any)}
}

func (m *MockGateway) record(method, path string) {
	m.Calls = append(m.Calls, method+" "+path)
}

func (m *MockGateway) Get(ctx context.Context, path string, query url.Values) (any, error) {
	m.record(http.MethodGet, path)

	switch {
	case path == ordersPath:
		rows := make([]any, 0, len(m.orders))
		for _, o := range m.orders {
			rows = append(rows, o)
		}
		return rows, nil

	case path == ordersPath+":by_client_order_id":
		want := query.Get("client_order_id")
		for _, o := range m.orders {
			if o["client_order_id"] == want {
				return o, nil
			}
		}
		return nil, nil

	case strings.HasPrefix(path, ordersPath+"/"):
		id := strings.TrimPrefix(path, ordersPath+"/")
		if o, ok := m.byID[id]; ok {
			return o, nil
		}
		return nil, nil

	case path == accountPath:
		return map[string]any{
			"id":                      uuid.NewString(),
			"account_number":          "PA0000000001",
			"created_at":              "2020-01-02T09:30:00-05:00",
			"status":                  "ACTIVE",
			"currency":                "USD",
			"buying_power":            "262113.632",
			"daytrading_buying_power": "262113.632",
			"regt_buying_power":       "131056.82",
			"multiplier":              "4",
			"cash":                    "65536.05",
			"portfolio_value":         "131056.82",
			"long_market_value":       "65520.77",
			"short_market_value":      "0",
			"equity":                  "131056.82",
			"last_equity":             "130977.00",
			"sma":                     "0",
			"pattern_day_trader":      false,
			"trade_suspended_by_user": false,
			"trading_blocked":         false,
			"transfers_blocked":       false,
			"account_blocked":         false,
			"shorting_enabled":        true,
			"daytrade_count":          0,
		}, nil

	case path == clockPath:
		now := time.Now().UTC().Format("2006-01-02T15:04:05-07:00")
		return map[string]any{
			"timestamp":  now,
			"is_open":    true,
			"next_open":  now,
			"next_close": now,
		}, nil

	case path == calendarPath:
		return []any{
			map[string]any{"date": "2021-03-15", "open": "09:30", "close": "16:00"},
		}, nil

	default:
		return nil, fmt.Errorf("mock: unknown path %s", path)
	}
}

func (m *MockGateway) Post(ctx context.Context, path string, body map[string]any) (any, error) {
	m.record(http.MethodPost, path)

	if path != ordersPath {
		return nil, fmt.Errorf("mock: unknown path %s", path)
	}

	now := time.Now().UTC().Format("2006-01-02T15:04:05-07:00")

	echoed := map[string]any{
		"id":           uuid.NewString(),
		"status":       "accepted",
		"created_at":   now,
		"updated_at":   now,
		"submitted_at": now,
		"filled_qty":   "0",
	}
	for key, value := range body {
		echoed[key] = value
	}

	m.orders = append(m.orders, echoed)
	m.byID[echoed["id"].(string)] = echoed

	return echoed, nil
}

func (m *MockGateway) Patch(ctx context.Context, path string, body map[string]any) (any, error) {
	m.record(http.MethodPatch, path)

	id := strings.TrimPrefix(path, ordersPath+"/")
	existing, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("mock: order %s not found", id)
	}

	for key, value := range body {
		existing[key] = value
	}
	existing["status"] = "replaced"

	return existing, nil
}

func (m *MockGateway) Delete(ctx context.Context, path string) (any, int, error) {
	m.record(http.MethodDelete, path)

	id := strings.TrimPrefix(path, ordersPath+"/")
	existing, ok := m.byID[id]
	if !ok {
		return nil, http.StatusNotFound, fmt.Errorf("mock: order %s not found", id)
	}

	existing["status"] = "canceled"

	return nil, http.StatusOK, nil
}
