package respond

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/toolguard/correlation"
	"github.com/jonwraymond/toolguard/httperror"
	"github.com/jonwraymond/toolguard/metrics"
	"github.com/jonwraymond/toolguard/observe"
)

// Handler is a tool-call handler: it receives decoded input and returns a
// result or an error.
type Handler func(ctx context.Context, input any) (any, error)

// Tool identifies one wrapped operation.
type Tool struct {
	// Name of the operation, e.g. "get_issue".
	Name string

	// DataKey, when set, names the result field callers expect; failure
	// envelopes then carry an empty object under it.
	DataKey string
}

// Middleware converts handler errors into structured envelopes, ensuring a
// correlation ID, logging the failure, recording it into the error window,
// and emitting telemetry for every execution.
//
// Contract:
// - Concurrency: safe for concurrent use; wrapped handlers share no state.
// - Context: caller cancellation is surfaced as the context error, never as
//   an envelope.
// - Errors: Wrap'd handlers return (result, nil) on success and
//   (*Envelope, nil) on classified failure.
type Middleware struct {
	service  string
	logger   observe.Logger
	tracer   observe.Tracer
	exec     observe.Metrics
	recorder *metrics.Recorder
}

// NewMiddleware creates a Middleware for one upstream service. Nil telemetry
// arguments are replaced with no-op implementations; a nil recorder disables
// error aggregation.
func NewMiddleware(service string, logger observe.Logger, tracer observe.Tracer, exec observe.Metrics, recorder *metrics.Recorder) *Middleware {
	if logger == nil {
		logger = observe.NoopLogger()
	}
	if tracer == nil {
		tracer = observe.NoopTracer()
	}
	if exec == nil {
		exec = observe.NoopMetrics()
	}
	return &Middleware{
		service:  service,
		logger:   logger,
		tracer:   tracer,
		exec:     exec,
		recorder: recorder,
	}
}

// Wrap returns a handler that executes fn under the middleware's policy.
//
// Every invocation gets a correlation ID: an inbound one from the context is
// preserved, otherwise a new one is generated and installed before fn runs.
// Successes pass through untouched. Caller cancellation propagates as the
// context error. Every other failure is classified, logged, recorded, and
// returned as (*Envelope, nil) so transports serialize it instead of
// propagating a raw error.
func (m *Middleware) Wrap(tool Tool, fn Handler) Handler {
	meta := observe.OpMeta{Service: m.service, Tool: tool.Name}
	logger := m.logger.WithOperation(meta)

	return func(ctx context.Context, input any) (any, error) {
		ctx, cid := correlation.Ensure(ctx)
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, input)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.exec.RecordExecution(ctx, meta, duration, err)

		if err == nil {
			return result, nil
		}

		if (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) && ctx.Err() != nil {
			// The caller gave up; there is no one to show an envelope to.
			// A handler-internal deadline leaves ctx.Err() nil and is
			// classified like any other failure.
			return nil, err
		}

		env := m.respond(ctx, logger, tool, cid, err)
		return env, nil
	}
}

// respond classifies the error, builds its envelope, and emits the log entry
// and error record for it.
func (m *Middleware) respond(ctx context.Context, logger observe.Logger, tool Tool, cid string, err error) *Envelope {
	kind, httpErr := Classify(err)

	env := &Envelope{
		Success:       false,
		ErrorType:     kind.String(),
		CorrelationID: cid,
		Service:       m.service,
		Tool:          tool.Name,
		DataKey:       tool.DataKey,
	}

	switch kind {
	case KindAuthentication:
		env.Error = "Authentication Failed"
		env.Message = err.Error()

	case KindValidation:
		env.Error = "Validation Error"
		env.Message = err.Error()

	case KindHTTP, KindRateLimit:
		env.Error = fmt.Sprintf("HTTP_%d", httpErr.StatusCode)
		env.StatusCode = httpErr.StatusCode
		env.Message = m.httpMessage(httpErr)
		if kind == KindRateLimit {
			if v, ok := httperror.RetryAfter(err); ok {
				env.RetryAfter = v
			}
			env.RateLimitRemaining = firstHeader(httpErr.Header, quotaRemainingHeaders)
			env.RateLimitReset = firstHeader(httpErr.Header, quotaResetHeaders)
		}

	default:
		env.Error = "Internal Error"
		// Deliberately generic: the underlying detail goes to the log and the
		// error record, never to the caller.
		env.Message = fmt.Sprintf("An unexpected error occurred calling %s. Please try again or contact support.", m.service)
	}

	fields := []observe.Field{
		{Key: "error_type", Value: kind.String()},
		{Key: "error", Value: err.Error()},
	}
	if env.StatusCode != 0 {
		fields = append(fields, observe.Field{Key: "status_code", Value: env.StatusCode})
	}
	logger.Error(ctx, "tool call failed", fields...)

	if m.recorder != nil {
		m.recorder.RecordError(ctx, metrics.Record{
			ErrorType:     kind.String(),
			Service:       m.service,
			Tool:          tool.Name,
			CorrelationID: cid,
			StatusCode:    env.StatusCode,
			Message:       err.Error(),
		})
	}

	return env
}

// httpMessage renders a caller-facing message for an upstream HTTP failure.
func (m *Middleware) httpMessage(httpErr *httperror.Error) string {
	switch {
	case httpErr.StatusCode == http.StatusUnauthorized:
		return fmt.Sprintf("Authentication failed for %s. Please check your credentials.", m.service)
	case httpErr.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("Access denied for %s. You may not have permission to perform this operation.", m.service)
	case httpErr.StatusCode == http.StatusNotFound:
		return fmt.Sprintf("Resource not found in %s.", m.service)
	case httpErr.StatusCode == http.StatusTooManyRequests:
		msg := fmt.Sprintf("Rate limit exceeded for %s. Please try again later.", m.service)
		if v := firstHeader(httpErr.Header, []string{"Retry-After"}); v != "" {
			msg = fmt.Sprintf("Rate limit exceeded for %s. Retry after %s seconds.", m.service, v)
		}
		return msg
	case httpErr.StatusCode >= 500:
		return fmt.Sprintf("%s server error. Please try again later.", m.service)
	default:
		return fmt.Sprintf("%s API error: %s", m.service, httpErr.Message)
	}
}

// Quota header echoes surfaced on rate-limit envelopes.
var (
	quotaRemainingHeaders = []string{
		"X-RateLimit-Remaining",
		"X-Rate-Limit-Remaining",
		"Rate-Limit-Remaining",
		"X-Rate-Remaining",
		"RateLimit-Remaining",
	}
	quotaResetHeaders = []string{
		"X-RateLimit-Reset",
		"X-Rate-Limit-Reset",
		"Rate-Limit-Reset",
		"RateLimit-Reset",
	}
)

// firstHeader returns the first non-empty value among the named headers,
// matching names case-insensitively.
func firstHeader(h http.Header, names []string) string {
	if h == nil {
		return ""
	}
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
		for key, values := range h {
			if strings.EqualFold(key, name) && len(values) > 0 && values[0] != "" {
				return values[0]
			}
		}
	}
	return ""
}
