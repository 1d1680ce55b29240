package httperror

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// rateLimitHeaders lists the quota-remaining header names seen across
// upstream services. Matched case-insensitively.
var rateLimitHeaders = []string{
	"X-RateLimit-Remaining",
	"X-Rate-Limit-Remaining",
	"Rate-Limit-Remaining",
	"X-Rate-Remaining",
	"RateLimit-Remaining",
}

// IsRateLimit reports whether an error carries a rate-limit signal from the
// upstream service. An error is a rate-limit signal if ANY of:
//
//   - the HTTP status is 429;
//   - a Retry-After header is present, even with an empty value;
//   - any known quota-remaining header parses to a numeric value of zero.
//
// The quota check applies on any status code, including 2xx: some services
// report "request succeeded but quota is now exhausted", and that signal is
// load-bearing for proactive backoff. Header values that fail to parse as
// numeric are ignored and detection falls through to the next signal.
//
// Errors that carry no upstream response at all are never rate-limit signals.
// The function is deliberately permissive: a false positive costs one backoff,
// a false negative costs a burst of rejected requests.
func IsRateLimit(err error) bool {
	var he *Error
	if !errors.As(err, &he) {
		return false
	}

	if he.StatusCode == http.StatusTooManyRequests {
		return true
	}

	if he.Header == nil {
		return false
	}

	// Presence alone is the signal; the value may be empty.
	if _, ok := headerValues(he.Header, "Retry-After"); ok {
		return true
	}

	for _, name := range rateLimitHeaders {
		values, ok := headerValues(he.Header, name)
		if !ok {
			continue
		}
		for _, v := range values {
			if remainingIsZero(v) {
				return true
			}
		}
	}

	return false
}

// RetryAfter returns the Retry-After header value from an error chain.
// The second return value reports presence; the value itself may be empty.
func RetryAfter(err error) (string, bool) {
	h := Headers(err)
	if h == nil {
		return "", false
	}
	values, ok := headerValues(h, "Retry-After")
	if !ok {
		return "", false
	}
	if len(values) == 0 {
		return "", true
	}
	return values[0], true
}

// headerValues looks up a header by name, case-insensitively, without
// assuming the stored key is in canonical form.
func headerValues(h http.Header, name string) ([]string, bool) {
	if values, ok := h[http.CanonicalHeaderKey(name)]; ok {
		return values, true
	}
	for key, values := range h {
		if strings.EqualFold(key, name) {
			return values, true
		}
	}
	return nil, false
}

// remainingIsZero reports whether a quota header value is numerically zero.
// Unparsable values are ignored, not treated as zero.
func remainingIsZero(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n == 0
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f == 0
	}
	return false
}
