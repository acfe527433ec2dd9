package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/amirphl/alpaca-trader/internal/logging"
)

const (
	headerKeyID     = "APCA-API-KEY-ID"
	headerSecretKey = "APCA-API-SECRET-KEY"

	defaultTimeout = 30 * time.Second
	maxRetries     = 3
)

// AlpacaGateway talks to the Alpaca v2 REST API. Transient failures (network
// errors and 5xx responses) are retried with exponential backoff; 4xx
// responses are returned immediately.
type AlpacaGateway struct {
	key      string
	secret   string
	endpoint string
	client   *http.Client
}

// NewAlpacaGateway returns a gateway for the given credentials and base
// endpoint (e.g. https://paper-api.alpaca.markets).
func NewAlpacaGateway(key, secret, endpoint string) *AlpacaGateway {
	return &AlpacaGateway{
		key:      key,
		secret:   secret,
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

func (g *AlpacaGateway) Get(ctx context.Context, path string, query url.Values) (any, error) {
	result, _, err := g.do(ctx, http.MethodGet, path, query, nil)
	return result, err
}

func (g *AlpacaGateway) Post(ctx context.Context, path string, body map[string]any) (any, error) {
	result, _, err := g.do(ctx, http.MethodPost, path, nil, body)
	return result, err
}

func (g *AlpacaGateway) Patch(ctx context.Context, path string, body map[string]any) (any, error) {
	result, _, err := g.do(ctx, http.MethodPatch, path, nil, body)
	return result, err
}

func (g *AlpacaGateway) Delete(ctx context.Context, path string) (any, int, error) {
	return g.do(ctx, http.MethodDelete, path, nil, nil)
}

func (g *AlpacaGateway) do(ctx context.Context, method, path string, query url.Values, body map[string]any) (any, int, error) {
	target := g.buildURL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request body: %w", err)
		}
	}

	var result any
	var statusCode int

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set(headerKeyID, g.key)
		req.Header.Set(headerSecretKey, g.secret)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s %s: reading response: %w", method, path, err)
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("%s %s: server error %d", method, path, resp.StatusCode)
		}
		if resp.StatusCode/100 != 2 {
			return backoff.Permanent(fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, raw))
		}

		result = decode(raw)
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		logging.L().Warnw("alpaca request retrying", "method", method, "path", path, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, statusCode, err
	}

	return result, statusCode, nil
}

// decode unmarshals a response body, normalizing a top-level scalar into a
// single-element slice. An empty or undecodable body yields nil.
func decode(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var result any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}

	switch result.(type) {
	case map[string]any, []any, nil:
		return result
	default:
		return []any{result}
	}
}

// buildURL joins the configured endpoint and path, appending the /v2 prefix
// when the endpoint does not already carry it.
func (g *AlpacaGateway) buildURL(path string) string {
	endpoint := strings.TrimSuffix(g.endpoint, "/")
	if !strings.HasSuffix(endpoint, "v2") {
		endpoint += "/v2"
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return endpoint + path
}
