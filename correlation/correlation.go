package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the conventional HTTP header carrying a correlation ID.
const Header = "X-Correlation-ID"

// IDLength is the length of generated correlation IDs.
const IDLength = 8

// contextKey is the private key type for correlation values.
type contextKey int

const idKey contextKey = iota

// New generates a correlation ID for request tracking.
// The ID is the first 8 characters of a random UUID: short enough to read
// in a log line, unique enough in practice for operational tracing.
func New() string {
	return uuid.NewString()[:IDLength]
}

// WithID returns a new context carrying the given correlation ID.
// An empty ID leaves the context unchanged.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, idKey, id)
}

// FromContext retrieves the correlation ID from the context.
// Returns empty string if none is present.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(idKey).(string)
	return id
}

// Ensure returns a context guaranteed to carry a correlation ID, along with
// the ID itself. An inbound ID is reused verbatim; otherwise a fresh one is
// minted and stored so nested calls and log lines see the same value.
//
// The ID is advisory metadata only. It must never influence control flow or
// business outcomes, only observability.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithID(ctx, id), id
}

// FromHeader seeds the context with the correlation ID from an inbound
// request header, if present.
func FromHeader(ctx context.Context, h http.Header) context.Context {
	return WithID(ctx, h.Get(Header))
}

// SetHeader stamps the context's correlation ID onto an outbound header.
// Does nothing if the context carries no ID.
func SetHeader(ctx context.Context, h http.Header) {
	if id := FromContext(ctx); id != "" {
		h.Set(Header, id)
	}
}
