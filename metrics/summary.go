package metrics

import (
	"math"
	"net/http"
	"time"
)

// Summary reports the state of the rolling error window.
type Summary struct {
	TotalErrors      int            `json:"total_errors"`
	ErrorRatePerHour float64        `json:"error_rate_per_hour"`
	UptimeHours      float64        `json:"uptime_hours"`
	ErrorTypes       map[string]int `json:"error_types"`
	ServiceErrors    map[string]int `json:"service_errors"`
	ToolErrors       map[string]int `json:"tool_errors"`
	RecentErrors     []Record       `json:"recent_errors"`
}

// Health status values derived from the error window.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusCritical  = "critical"
)

// Error-rate thresholds, in errors per hour of uptime.
const (
	degradedRateThreshold  = 5
	unhealthyRateThreshold = 20
)

// authCriticalThreshold is the number of authentication errors in the window
// past which the system is considered critically unhealthy regardless of
// overall rate: that volume signals broken credentials or configuration,
// not transient noise.
const authCriticalThreshold = 10

// authErrorType is the taxonomy kind counted against authCriticalThreshold.
const authErrorType = "authentication"

// HealthState is the health verdict derived from the error window. It is
// recomputed on every query, never stored.
type HealthState struct {
	Status     string    `json:"status"`
	StatusCode int       `json:"status_code"`
	Summary    Summary   `json:"error_summary"`
	Timestamp  time.Time `json:"timestamp"`
}

// Summary computes counts, rates, and breakdowns over records no older than
// MaxAge. The per-hour rate is the windowed count divided by total uptime.
func (r *Recorder) Summary() Summary {
	records, start, now := r.snapshot()

	cutoff := now.Add(-r.config.MaxAge)
	recent := records[:0:0]
	for _, rec := range records {
		if rec.Timestamp.After(cutoff) {
			recent = append(recent, rec)
		}
	}

	uptimeHours := now.Sub(start).Hours()
	rate := 0.0
	if uptimeHours > 0 {
		rate = float64(len(recent)) / uptimeHours
	}

	s := Summary{
		TotalErrors:      len(recent),
		ErrorRatePerHour: round2(rate),
		UptimeHours:      round2(uptimeHours),
		ErrorTypes:       make(map[string]int),
		ServiceErrors:    make(map[string]int),
		ToolErrors:       make(map[string]int),
	}

	for _, rec := range recent {
		s.ErrorTypes[rec.ErrorType]++
		s.ServiceErrors[rec.Service]++
		if rec.Tool != "" {
			s.ToolErrors[rec.Tool]++
		}
	}

	tail := len(recent) - recentLimit
	if tail < 0 {
		tail = 0
	}
	s.RecentErrors = append([]Record(nil), recent[tail:]...)

	return s
}

// HealthStatus maps the current error rate to a health verdict:
//
//	0/hr            healthy    (200)
//	< 5/hr          degraded   (200)
//	< 20/hr         unhealthy  (503)
//	>= 20/hr        critical   (503)
//
// More than 10 authentication errors in the window force critical regardless
// of rate.
func (r *Recorder) HealthStatus() HealthState {
	summary := r.Summary()
	rate := summary.ErrorRatePerHour

	var status string
	var code int
	switch {
	case rate == 0:
		status, code = StatusHealthy, http.StatusOK
	case rate < degradedRateThreshold:
		status, code = StatusDegraded, http.StatusOK
	case rate < unhealthyRateThreshold:
		status, code = StatusUnhealthy, http.StatusServiceUnavailable
	default:
		status, code = StatusCritical, http.StatusServiceUnavailable
	}

	if summary.ErrorTypes[authErrorType] > authCriticalThreshold {
		status, code = StatusCritical, http.StatusServiceUnavailable
	}

	return HealthState{
		Status:     status,
		StatusCode: code,
		Summary:    summary,
		Timestamp:  time.Now(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
