package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Record is one classified error occurrence. Records are immutable once
// created and owned exclusively by the Recorder.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	ErrorType     string    `json:"error_type"`
	Service       string    `json:"service"`
	Tool          string    `json:"tool,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	StatusCode    int       `json:"status_code,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// Config configures the error recorder.
type Config struct {
	// MaxHistory bounds the in-memory history; the oldest record is dropped
	// at capacity. Default: 1000
	MaxHistory int

	// MaxAge is how far back summaries look. Older records are ignored when
	// computing rates and breakdowns. Default: 24h
	MaxAge time.Duration
}

// recentLimit is how many records a summary echoes back.
const recentLimit = 10

// Recorder aggregates classified errors into a bounded rolling window and
// computes rates over it. It is the only process-wide mutable state in the
// system: a single mutex guards the ring so concurrent operations can record
// failures simultaneously. Nothing is persisted; a restart clears all
// metrics by design.
//
// Construct one Recorder and inject it wherever errors are recorded or
// health is reported. There is no package-level instance.
type Recorder struct {
	config Config

	mu    sync.Mutex
	ring  []Record
	head  int // index of the oldest record
	count int
	start time.Time

	now func() time.Time

	errorCount metric.Int64Counter
}

// NewRecorder creates an error recorder.
func NewRecorder(config ...Config) *Recorder {
	cfg := Config{
		MaxHistory: 1000,
		MaxAge:     24 * time.Hour,
	}
	if len(config) > 0 {
		if config[0].MaxHistory > 0 {
			cfg.MaxHistory = config[0].MaxHistory
		}
		if config[0].MaxAge > 0 {
			cfg.MaxAge = config[0].MaxAge
		}
	}

	return &Recorder{
		config: cfg,
		ring:   make([]Record, cfg.MaxHistory),
		start:  time.Now(),
		now:    time.Now,
	}
}

// NewRecorderWithMeter creates a recorder that additionally mirrors every
// recorded error to an OpenTelemetry counter, so external collectors see the
// same signal as the in-process window.
func NewRecorderWithMeter(meter metric.Meter, config ...Config) (*Recorder, error) {
	r := NewRecorder(config...)

	errorCount, err := meter.Int64Counter(
		"tool.errors.recorded",
		metric.WithDescription("Total number of classified tool errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	r.errorCount = errorCount
	return r, nil
}

// RecordError appends an error occurrence to the rolling window. A zero
// timestamp is filled with the current time. Safe for concurrent use.
func (r *Recorder) RecordError(ctx context.Context, rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.currentTime()
	}

	r.mu.Lock()
	if r.count == len(r.ring) {
		// At capacity: overwrite the oldest record.
		r.ring[r.head] = rec
		r.head = (r.head + 1) % len(r.ring)
	} else {
		r.ring[(r.head+r.count)%len(r.ring)] = rec
		r.count++
	}
	r.mu.Unlock()

	if r.errorCount != nil {
		r.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error_type", rec.ErrorType),
			attribute.String("service", rec.Service),
			attribute.String("tool", rec.Tool),
		))
	}
}

// Len returns the number of records currently held.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Recorder) currentTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now()
}

// snapshot copies the retained records in insertion order.
func (r *Recorder) snapshot() ([]Record, time.Time, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]Record, 0, r.count)
	for i := 0; i < r.count; i++ {
		records = append(records, r.ring[(r.head+i)%len(r.ring)])
	}
	return records, r.start, r.now()
}
