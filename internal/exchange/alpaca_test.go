package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlpacaGatewayRequestShape(t *testing.T) {
	ctx := context.Background()

	var seen *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Clone(r.Context())
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	gw := NewAlpacaGateway("key-id", "secret-key", server.URL)

	_, err := gw.Get(ctx, "/orders", url.Values{"nested": {"true"}})
	require.NoError(t, err)
	require.NotNil(t, seen)

	assert.Equal(t, "/v2/orders", seen.URL.Path)
	assert.Equal(t, "true", seen.URL.Query().Get("nested"))
	assert.Equal(t, "key-id", seen.Header.Get("APCA-API-KEY-ID"))
	assert.Equal(t, "secret-key", seen.Header.Get("APCA-API-SECRET-KEY"))
}

func TestAlpacaGatewayURLBuilding(t *testing.T) {
	cases := []struct {
		endpoint string
		path     string
		want     string
	}{
		{"https://paper-api.alpaca.markets", "/orders", "https://paper-api.alpaca.markets/v2/orders"},
		{"https://paper-api.alpaca.markets/", "/orders", "https://paper-api.alpaca.markets/v2/orders"},
		{"https://paper-api.alpaca.markets/v2", "/orders", "https://paper-api.alpaca.markets/v2/orders"},
		{"https://paper-api.alpaca.markets", "orders", "https://paper-api.alpaca.markets/v2/orders"},
	}

	for _, tc := range cases {
		gw := NewAlpacaGateway("k", "s", tc.endpoint)
		assert.Equal(t, tc.want, gw.buildURL(tc.path), "endpoint %q path %q", tc.endpoint, tc.path)
	}
}

func TestAlpacaGatewayPostBody(t *testing.T) {
	ctx := context.Background()

	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"id": "x"}`))
	}))
	defer server.Close()

	gw := NewAlpacaGateway("k", "s", server.URL)

	result, err := gw.Post(ctx, "/orders", map[string]any{"symbol": "AAPL", "qty": "1"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", body["symbol"])
	assert.Equal(t, map[string]any{"id": "x"}, result)
}

func TestAlpacaGatewayDecode(t *testing.T) {
	t.Run("Scalar normalizes to a single-element slice", func(t *testing.T) {
		assert.Equal(t, []any{"pong"}, decode([]byte(`"pong"`)))
		assert.Equal(t, []any{42.0}, decode([]byte(`42`)))
		assert.Equal(t, []any{true}, decode([]byte(`true`)))
	})

	t.Run("Objects and lists pass through", func(t *testing.T) {
		assert.Equal(t, map[string]any{"a": 1.0}, decode([]byte(`{"a": 1}`)))
		assert.Equal(t, []any{1.0, 2.0}, decode([]byte(`[1, 2]`)))
	})

	t.Run("Empty body is nil", func(t *testing.T) {
		assert.Nil(t, decode(nil))
		assert.Nil(t, decode([]byte("  ")))
	})
}

func TestAlpacaGatewayDelete(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gw := NewAlpacaGateway("k", "s", server.URL)

	_, status, err := gw.Delete(ctx, "/orders/904837e3-3b76-47ec-b432-046db621571b")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestAlpacaGatewayRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("Retries server errors", func(t *testing.T) {
		var hits int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&hits, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		gw := NewAlpacaGateway("k", "s", server.URL)

		_, err := gw.Get(ctx, "/clock", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		var hits int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message": "qty is required"}`))
		}))
		defer server.Close()

		gw := NewAlpacaGateway("k", "s", server.URL)

		_, err := gw.Post(ctx, "/orders", map[string]any{})
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
		assert.Contains(t, err.Error(), "422")
	})
}
