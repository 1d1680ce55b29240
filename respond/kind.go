package respond

import (
	"errors"

	"github.com/jonwraymond/toolguard/httperror"
)

// Kind is the closed error taxonomy for surfaced failures. Every error that
// escapes a wrapped handler is classified into exactly one kind.
type Kind int

const (
	// KindAuthentication is the handler's own "not authenticated or
	// authorized" signal. Never retried.
	KindAuthentication Kind = iota

	// KindHTTP is an upstream HTTP failure carrying a status code.
	KindHTTP

	// KindRateLimit is an upstream HTTP failure that matches a rate-limit
	// signal; a refinement of KindHTTP.
	KindRateLimit

	// KindValidation is a caller-input error. Never retried.
	KindValidation

	// KindInternal is everything else: logged with full detail server-side,
	// surfaced with a generic message.
	KindInternal
)

// String returns the wire name of the kind, as it appears in envelopes and
// error records.
func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindHTTP:
		return "http_error"
	case KindRateLimit:
		return "rate_limit"
	case KindValidation:
		return "validation"
	case KindInternal:
		return "internal"
	default:
		return "internal"
	}
}

// AuthenticationError is a domain signal that credentials were rejected or
// missing. Handlers raise it to have the failure classified as
// authentication rather than a generic upstream error.
type AuthenticationError struct {
	Message string
}

// NewAuthenticationError creates an AuthenticationError.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// ValidationError is a caller-input error: the request was malformed or
// violated a domain rule before any upstream call.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Classify maps an error value into the taxonomy. The returned *httperror.Error
// is non-nil for KindHTTP and KindRateLimit.
//
// Classification is an explicit, ordered mapping: the handler's own
// authentication signal wins over the HTTP shape of the underlying failure,
// and anything unrecognized is internal.
func Classify(err error) (Kind, *httperror.Error) {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return KindAuthentication, nil
	}

	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		if httperror.IsRateLimit(err) {
			return KindRateLimit, httpErr
		}
		return KindHTTP, httpErr
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindValidation, nil
	}

	return KindInternal, nil
}
