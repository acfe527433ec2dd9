// Package exchange
package exchange

import (
	"context"
	"errors"
	"net/url"
)

var (
	// ErrInvalidParameter marks a caller-supplied argument that is out of
	// range or unrecognized. Raised before any network call.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidResponse marks a response missing required fields, or a
	// transport failure during a read operation.
	ErrInvalidResponse = errors.New("invalid response")
)

// Gateway is the HTTP transport the resources call through. Implementations
// return decoded JSON: an object decodes to map[string]any, a list to []any,
// and a top-level scalar is normalized into a single-element []any.
// Retry, timeout and cancellation policy live behind this interface; the
// resource layer performs at most one call per operation.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values) (any, error)
	Post(ctx context.Context, path string, body map[string]any) (any, error)
	Patch(ctx context.Context, path string, body map[string]any) (any, error)
	Delete(ctx context.Context, path string) (any, int, error)
}
