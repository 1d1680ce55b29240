package respond

import "encoding/json"

// Envelope is the structured error payload returned to callers in place of a
// raw error. It is always a failure shape: successful results pass through
// the middleware untouched.
type Envelope struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	ErrorType     string `json:"error_type"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
	Service       string `json:"service"`
	Tool          string `json:"tool,omitempty"`

	StatusCode int    `json:"status_code,omitempty"`
	RetryAfter string `json:"retry_after,omitempty"`

	// Quota header echoes, present only for rate-limit failures whose
	// response carried them.
	RateLimitRemaining string `json:"rate_limit_remaining,omitempty"`
	RateLimitReset     string `json:"rate_limit_reset,omitempty"`

	// DataKey, when set, adds an empty object under that key so callers that
	// unconditionally index into their usual result field get a well-formed
	// empty value instead of a missing-key failure.
	DataKey string `json:"-"`
}

// MarshalJSON renders the envelope, inlining an empty object under DataKey
// when one is configured.
func (e Envelope) MarshalJSON() ([]byte, error) {
	type plain Envelope
	data, err := json.Marshal(plain(e))
	if err != nil {
		return nil, err
	}
	if e.DataKey == "" {
		return data, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m[e.DataKey] = json.RawMessage("{}")
	return json.Marshal(m)
}
