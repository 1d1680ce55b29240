// Package correlation provides request correlation IDs for end-to-end tracing.
//
// A correlation ID is a short opaque token that threads one logical operation
// through every log line, retry attempt, error record, and response envelope
// it touches. IDs are either carried forward from an inbound boundary (an
// X-Correlation-ID header or an existing context value) or freshly minted,
// then stored in the context so nested calls observe the same value.
//
// # Usage
//
//	// At the inbound boundary
//	ctx = correlation.FromHeader(ctx, r.Header)
//	ctx, id := correlation.Ensure(ctx)
//
//	// On outbound requests
//	correlation.SetHeader(ctx, req.Header)
//
// IDs are advisory metadata only: they have no ownership semantics and must
// never affect control flow, only observability.
package correlation
