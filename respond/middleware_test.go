package respond

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/jonwraymond/toolguard/correlation"
	"github.com/jonwraymond/toolguard/httperror"
	"github.com/jonwraymond/toolguard/metrics"
	"github.com/jonwraymond/toolguard/observe"
)

func newTestMiddleware(recorder *metrics.Recorder) *Middleware {
	return NewMiddleware("jira", nil, nil, nil, recorder)
}

func wrapAndCall(t *testing.T, m *Middleware, tool Tool, fn Handler, ctx context.Context) *Envelope {
	t.Helper()
	result, err := m.Wrap(tool, fn)(ctx, nil)
	if err != nil {
		t.Fatalf("wrapped handler error = %v, want nil", err)
	}
	env, ok := result.(*Envelope)
	if !ok {
		t.Fatalf("result = %T, want *Envelope", result)
	}
	return env
}

func TestWrap_SuccessPassesThrough(t *testing.T) {
	recorder := metrics.NewRecorder()
	m := newTestMiddleware(recorder)

	handler := m.Wrap(Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		return "the issue", nil
	})

	result, err := handler(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler error = %v, want nil", err)
	}
	if result != "the issue" {
		t.Errorf("result = %v, want untouched handler result", result)
	}
	if recorder.Len() != 0 {
		t.Errorf("recorder.Len() = %d, want 0 after success", recorder.Len())
	}
}

func TestWrap_GeneratesCorrelationID(t *testing.T) {
	m := newTestMiddleware(nil)

	var seen string
	env := wrapAndCall(t, m, Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		seen = correlation.FromContext(ctx)
		return nil, errors.New("boom")
	}, context.Background())

	if len(seen) != correlation.IDLength {
		t.Fatalf("handler saw correlation id %q, want %d chars", seen, correlation.IDLength)
	}
	if env.CorrelationID != seen {
		t.Errorf("envelope id = %q, handler saw %q; want same", env.CorrelationID, seen)
	}
}

func TestWrap_PreservesInboundCorrelationID(t *testing.T) {
	m := newTestMiddleware(nil)

	ctx := correlation.WithID(context.Background(), "existing123")
	env := wrapAndCall(t, m, Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, errors.New("boom")
	}, ctx)

	if env.CorrelationID != "existing123" {
		t.Errorf("envelope id = %q, want inbound id preserved", env.CorrelationID)
	}
}

func TestWrap_HTTPError(t *testing.T) {
	recorder := metrics.NewRecorder()
	m := newTestMiddleware(recorder)

	env := wrapAndCall(t, m, Tool{Name: "get_issue", DataKey: "issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, httperror.New(http.StatusNotFound, "issue does not exist")
	}, context.Background())

	if env.Error != "HTTP_404" {
		t.Errorf("Error = %q, want HTTP_404", env.Error)
	}
	if env.ErrorType != "http_error" {
		t.Errorf("ErrorType = %q, want http_error", env.ErrorType)
	}
	if env.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", env.StatusCode)
	}
	if want := "Resource not found in jira."; env.Message != want {
		t.Errorf("Message = %q, want %q", env.Message, want)
	}

	s := recorder.Summary()
	if s.ErrorTypes["http_error"] != 1 {
		t.Errorf("recorded http_error count = %d, want 1", s.ErrorTypes["http_error"])
	}
	if s.ToolErrors["get_issue"] != 1 {
		t.Errorf("recorded tool count = %d, want 1", s.ToolErrors["get_issue"])
	}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"issue":{}`) {
		t.Errorf("envelope JSON missing empty data key: %s", data)
	}
}

func TestWrap_RateLimit(t *testing.T) {
	m := newTestMiddleware(nil)

	err := httperror.New(http.StatusTooManyRequests, "rate limited").WithHeader(http.Header{
		"Retry-After":           {"30"},
		"X-Ratelimit-Remaining": {"0"},
		"X-Ratelimit-Reset":     {"1700000000"},
	})

	env := wrapAndCall(t, m, Tool{Name: "search"}, func(ctx context.Context, input any) (any, error) {
		return nil, err
	}, context.Background())

	if env.ErrorType != "rate_limit" {
		t.Errorf("ErrorType = %q, want rate_limit", env.ErrorType)
	}
	if env.Error != "HTTP_429" {
		t.Errorf("Error = %q, want HTTP_429", env.Error)
	}
	if env.RetryAfter != "30" {
		t.Errorf("RetryAfter = %q, want 30", env.RetryAfter)
	}
	if env.RateLimitRemaining != "0" {
		t.Errorf("RateLimitRemaining = %q, want 0", env.RateLimitRemaining)
	}
	if env.RateLimitReset != "1700000000" {
		t.Errorf("RateLimitReset = %q, want 1700000000", env.RateLimitReset)
	}
	if !strings.Contains(env.Message, "Retry after 30 seconds") {
		t.Errorf("Message = %q, want retry-after hint", env.Message)
	}
}

func TestWrap_QuotaExhaustedOnSuccessStatus(t *testing.T) {
	m := newTestMiddleware(nil)

	// Quota reported exhausted on a 2xx: still a rate-limit signal.
	err := httperror.New(http.StatusOK, "quota exhausted").WithHeader(http.Header{
		"X-Ratelimit-Remaining": {"0"},
	})

	env := wrapAndCall(t, m, Tool{Name: "search"}, func(ctx context.Context, input any) (any, error) {
		return nil, err
	}, context.Background())

	if env.ErrorType != "rate_limit" {
		t.Errorf("ErrorType = %q, want rate_limit", env.ErrorType)
	}
	if env.RateLimitRemaining != "0" {
		t.Errorf("RateLimitRemaining = %q, want 0", env.RateLimitRemaining)
	}
}

func TestWrap_AuthenticationError(t *testing.T) {
	m := newTestMiddleware(nil)

	env := wrapAndCall(t, m, Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, NewAuthenticationError("token expired")
	}, context.Background())

	if env.Error != "Authentication Failed" {
		t.Errorf("Error = %q, want Authentication Failed", env.Error)
	}
	if env.ErrorType != "authentication" {
		t.Errorf("ErrorType = %q, want authentication", env.ErrorType)
	}
	if env.Message != "token expired" {
		t.Errorf("Message = %q, want the error message", env.Message)
	}
}

func TestWrap_ValidationError(t *testing.T) {
	m := newTestMiddleware(nil)

	env := wrapAndCall(t, m, Tool{Name: "create_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, NewValidationError("summary is required")
	}, context.Background())

	if env.Error != "Validation Error" {
		t.Errorf("Error = %q, want Validation Error", env.Error)
	}
	if env.Message != "summary is required" {
		t.Errorf("Message = %q, want the error message", env.Message)
	}
}

func TestWrap_InternalErrorIsGeneric(t *testing.T) {
	recorder := metrics.NewRecorder()
	m := newTestMiddleware(recorder)

	env := wrapAndCall(t, m, Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, errors.New("pq: connection string contained password")
	}, context.Background())

	if env.Error != "Internal Error" {
		t.Errorf("Error = %q, want Internal Error", env.Error)
	}
	if strings.Contains(env.Message, "password") {
		t.Errorf("Message = %q, leaked internal detail", env.Message)
	}

	// Full detail is preserved server-side in the error record.
	s := recorder.Summary()
	if len(s.RecentErrors) != 1 || !strings.Contains(s.RecentErrors[0].Message, "connection string") {
		t.Errorf("RecentErrors = %+v, want full internal detail recorded", s.RecentErrors)
	}
}

func TestWrap_CancellationPropagates(t *testing.T) {
	recorder := metrics.NewRecorder()
	m := newTestMiddleware(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	handler := m.Wrap(Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		cancel()
		return nil, ctx.Err()
	})

	result, err := handler(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if result != nil {
		t.Errorf("result = %v, want nil on cancellation", result)
	}
	if recorder.Len() != 0 {
		t.Errorf("recorder.Len() = %d, want 0; cancellation is not a failure", recorder.Len())
	}
}

func TestWrap_InnerDeadlineGetsEnvelope(t *testing.T) {
	recorder := metrics.NewRecorder()
	m := newTestMiddleware(recorder)

	// A deadline from a per-attempt timeout inside the handler, while the
	// caller's context is still alive, is a classified failure, not caller
	// cancellation.
	env := wrapAndCall(t, m, Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, fmt.Errorf("call upstream: %w", context.DeadlineExceeded)
	}, context.Background())

	if env.ErrorType != "internal" {
		t.Errorf("ErrorType = %q, want internal", env.ErrorType)
	}
	if recorder.Len() != 1 {
		t.Errorf("recorder.Len() = %d, want 1", recorder.Len())
	}
}

func TestWrap_LogsFailureWithCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)
	m := NewMiddleware("jira", logger, nil, nil, nil)

	ctx := correlation.WithID(context.Background(), "abc12345")
	wrapAndCall(t, m, Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, httperror.New(http.StatusBadGateway, "bad gateway")
	}, ctx)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output not JSON: %v\n%s", err, buf.String())
	}
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
	if entry["correlation_id"] != "abc12345" {
		t.Errorf("correlation_id = %v, want abc12345", entry["correlation_id"])
	}
	if entry["service"] != "jira" || entry["tool"] != "get_issue" {
		t.Errorf("operation attrs = %v/%v, want jira/get_issue", entry["service"], entry["tool"])
	}
	if entry["error_type"] != "http_error" {
		t.Errorf("error_type = %v, want http_error", entry["error_type"])
	}
}

func TestWrap_ValidationLogsAtError(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)
	m := NewMiddleware("jira", logger, nil, nil, nil)

	wrapAndCall(t, m, Tool{Name: "create_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, NewValidationError("summary is required")
	}, context.Background())

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output not JSON: %v", err)
	}
	// Every classified failure logs at error level, validation included.
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
	if entry["error_type"] != "validation" {
		t.Errorf("error_type = %v, want validation", entry["error_type"])
	}
}

func TestWrap_ConcurrentInvocations(t *testing.T) {
	recorder := metrics.NewRecorder()
	m := newTestMiddleware(recorder)

	handler := m.Wrap(Tool{Name: "get_issue"}, func(ctx context.Context, input any) (any, error) {
		return nil, fmt.Errorf("failure for %s", correlation.FromContext(ctx))
	})

	const goroutines = 20
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			id := fmt.Sprintf("id-%04d", g)
			ctx := correlation.WithID(context.Background(), id)

			result, err := handler(ctx, nil)
			if err != nil {
				t.Errorf("handler error = %v", err)
				return
			}
			env := result.(*Envelope)
			if env.CorrelationID != id {
				t.Errorf("envelope id = %q, want %q; cross-invocation contamination", env.CorrelationID, id)
			}
		}(g)
	}
	wg.Wait()

	if recorder.Len() != goroutines {
		t.Errorf("recorder.Len() = %d, want %d", recorder.Len(), goroutines)
	}
}
