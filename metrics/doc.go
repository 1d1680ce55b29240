// Package metrics aggregates classified errors into a bounded in-memory
// window and derives rates and health verdicts from it.
//
// A Recorder holds the most recent errors (default 1000, oldest dropped at
// capacity) and computes summaries over records younger than a maximum age
// (default 24 hours). Records are immutable and append-only; the window is
// mutex-guarded so any number of in-flight operations can record errors
// concurrently.
//
//	recorder := metrics.NewRecorder()
//
//	recorder.RecordError(ctx, metrics.Record{
//	    ErrorType:     "http_error",
//	    Service:       "jira",
//	    Tool:          "get_issue",
//	    CorrelationID: id,
//	    StatusCode:    502,
//	    Message:       "bad gateway",
//	})
//
//	summary := recorder.Summary()      // counts, rates, breakdowns
//	state := recorder.HealthStatus()   // healthy/degraded/unhealthy/critical
//
// NewRecorderWithMeter mirrors each recorded error to an OpenTelemetry
// counter so external collectors see the same signal.
//
// There is no package-level recorder: construct one and pass it by reference
// to whatever exposes health and metrics endpoints.
package metrics
