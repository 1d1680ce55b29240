package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonwraymond/toolguard/metrics"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// It reports only that the process is up; readiness lives elsewhere.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// HealthHandler returns an HTTP handler serving the monitor's full report as
// JSON. The HTTP status code follows the overall verdict: 200 while healthy
// or degraded, 503 once unhealthy or critical.
func HealthHandler(monitor *Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		report := monitor.RunChecks(ctx)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(report.OverallStatus.HTTPStatus())
		_ = json.NewEncoder(w).Encode(report)
	}
}

// SingleCheckHandler returns an HTTP handler for one named probe.
func SingleCheckHandler(monitor *Monitor, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := monitor.Check(ctx, name)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(result.Status.HTTPStatus())
		_ = json.NewEncoder(w).Encode(newCheckResult(result))
	}
}

// metricsResponse is the payload served by MetricsHandler.
type metricsResponse struct {
	Metrics   metrics.Summary `json:"metrics"`
	Timestamp time.Time       `json:"timestamp"`
}

// MetricsHandler returns an HTTP handler serving the error-window summary.
// Always 200: this endpoint reports numbers, the health endpoint judges them.
func MetricsHandler(recorder *metrics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(metricsResponse{
			Metrics:   recorder.Summary(),
			Timestamp: time.Now().UTC(),
		})
	}
}

// RegisterHandlers registers the standard endpoints on the given mux.
func RegisterHandlers(mux *http.ServeMux, monitor *Monitor, recorder *metrics.Recorder) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/health", HealthHandler(monitor))
	mux.HandleFunc("/metrics/errors", MetricsHandler(recorder))
}
