// Package httperror provides a typed error for failed upstream HTTP calls
// and rate-limit signal detection over it.
//
// Collaborators performing remote calls return *Error (usually built with
// FromResponse) when the upstream service fails. The rest of the system
// inspects that error through errors.As-compatible helpers: StatusCode for
// retryability decisions, IsRateLimit for multi-signal rate-limit detection,
// and RetryAfter for echoing backoff hints to callers.
//
//	resp, err := client.Do(req)
//	if err != nil {
//	    return err // network-level failure, not an httperror
//	}
//	defer resp.Body.Close()
//	if resp.StatusCode >= 400 {
//	    return httperror.FromResponse(resp)
//	}
//
// Rate-limit detection recognizes three independent signals: a 429 status,
// the presence of a Retry-After header (even empty), and any of several
// quota-remaining header variants with a numeric value of zero. See
// IsRateLimit for the exact contract.
package httperror
