package httperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a failed HTTP call to an upstream service. It carries the
// status code and response headers so classification and rate-limit detection
// can inspect them after the call site has returned.
type Error struct {
	// StatusCode is the HTTP status code of the failed response.
	StatusCode int

	// Status is the HTTP status line, e.g. "429 Too Many Requests".
	Status string

	// Header holds the response headers. May be nil.
	Header http.Header

	// URL is the request URL, if known.
	URL string

	// Message is an optional human-readable description.
	Message string
}

// New creates an Error with the given status code and message.
func New(statusCode int, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Message:    message,
	}
}

// FromResponse creates an Error from an HTTP response. The body is not read;
// this layer does not know the shape of upstream payloads.
func FromResponse(resp *http.Response) *Error {
	e := &Error{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		e.URL = resp.Request.URL.String()
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("httperror: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("httperror: %s", e.Status)
}

// WithHeader returns a copy of the error with the given header attached.
func (e *Error) WithHeader(h http.Header) *Error {
	clone := *e
	clone.Header = h
	return &clone
}

// StatusCode extracts the upstream HTTP status code from an error chain.
// The second return value reports whether an upstream response was present.
func StatusCode(err error) (int, bool) {
	var he *Error
	if errors.As(err, &he) {
		return he.StatusCode, true
	}
	return 0, false
}

// Headers extracts the upstream response headers from an error chain.
// Returns nil if the error carries no response.
func Headers(err error) http.Header {
	var he *Error
	if errors.As(err, &he) {
		return he.Header
	}
	return nil
}
