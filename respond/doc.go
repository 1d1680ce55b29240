// Package respond classifies handler errors into a closed taxonomy and
// converts them into structured envelopes instead of raw error propagation.
//
// The taxonomy has five kinds: authentication, http_error, rate_limit,
// validation, and internal. Classification is ordered: a handler's own
// AuthenticationError wins over the HTTP shape of the failure, upstream HTTP
// errors are refined to rate_limit when they carry a rate-limit signal, and
// anything unrecognized is internal and surfaced generically.
//
// Middleware wires the whole failure path together:
//
//	mw := respond.NewMiddleware("jira", logger, tracer, execMetrics, recorder)
//
//	handler := mw.Wrap(respond.Tool{Name: "get_issue", DataKey: "issue"},
//	    func(ctx context.Context, input any) (any, error) {
//	        return client.GetIssue(ctx, input)
//	    })
//
// Every invocation is guaranteed a correlation ID, every failure is logged
// and recorded into the error window, and the caller receives an *Envelope
// carrying the correlation ID so a single failure can be traced end to end.
// Caller cancellation is the one exception: it propagates as the context
// error, since the caller is gone.
package respond
