package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/toolguard/metrics"
)

// MonitorConfig configures the health monitor.
type MonitorConfig struct {
	// Timeout is the maximum time to wait for all probes in one run.
	// Default: 10 seconds
	Timeout time.Duration
}

// Monitor combines registered probes and the error-metrics window into a
// single health verdict. Probes run concurrently under a shared deadline;
// one slow probe delays the report but a failing probe never aborts the rest.
//
// Contract:
// - Concurrency: safe for concurrent use; overlapping RunChecks calls are
//   coalesced into a single probe sweep.
// - Context: RunChecks honors cancellation; a probe that outlives the
//   deadline is reported unhealthy with ErrCheckTimeout.
type Monitor struct {
	config   MonitorConfig
	recorder *metrics.Recorder

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string // registration order

	group singleflight.Group
}

// NewMonitor creates a health monitor. The recorder may be nil, in which case
// reports carry no error metrics and the verdict comes from probes alone.
func NewMonitor(recorder *metrics.Recorder, config ...MonitorConfig) *Monitor {
	cfg := MonitorConfig{
		Timeout: 10 * time.Second,
	}
	if len(config) > 0 && config[0].Timeout > 0 {
		cfg.Timeout = config[0].Timeout
	}

	return &Monitor{
		config:   cfg,
		recorder: recorder,
		checkers: make(map[string]Checker),
	}
}

// Register adds a probe under its own name. Registering the same name again
// replaces the previous probe.
func (m *Monitor) Register(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := checker.Name()
	if _, exists := m.checkers[name]; !exists {
		m.order = append(m.order, name)
	}
	m.checkers[name] = checker
}

// Unregister removes a probe by name.
func (m *Monitor) Unregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkers, name)

	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// CheckerNames returns the names of all registered probes in registration order.
func (m *Monitor) CheckerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// Check runs a single named probe.
func (m *Monitor) Check(ctx context.Context, name string) (Result, error) {
	m.mu.RLock()
	checker, ok := m.checkers[name]
	m.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	return m.runCheck(ctx, checker), nil
}

// RunChecks runs every registered probe, folds in the error-metrics verdict,
// and returns the combined report. Concurrent callers share one sweep.
func (m *Monitor) RunChecks(ctx context.Context) Report {
	v, _, _ := m.group.Do("run", func() (any, error) {
		return m.runChecks(ctx), nil
	})
	return v.(Report)
}

func (m *Monitor) runChecks(ctx context.Context) Report {
	m.mu.RLock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	checkers := make([]Checker, len(names))
	for i, name := range names {
		checkers[i] = m.checkers[name]
	}
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	results := make([]Result, len(checkers))
	g, ctx := errgroup.WithContext(ctx)
	for i, checker := range checkers {
		g.Go(func() error {
			// Failures land in the result, never in the group: one broken
			// probe must not cancel the others.
			results[i] = m.runCheck(ctx, checker)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		OverallStatus: StatusHealthy,
		Timestamp:     time.Now().UTC(),
		Checks:        make(map[string]CheckResult, len(names)),
	}

	for i, name := range names {
		report.Checks[name] = newCheckResult(results[i])
		report.OverallStatus = worst(report.OverallStatus, results[i].Status)
	}

	if m.recorder != nil {
		state := m.recorder.HealthStatus()
		summary := state.Summary
		report.ErrorMetrics = &summary
		report.OverallStatus = worst(report.OverallStatus, statusFromMetrics(state.Status))
	}

	return report
}

// runCheck executes one probe, bounding it by the context deadline.
func (m *Monitor) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()

	resultCh := make(chan Result, 1)
	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// statusFromMetrics maps the error-window verdict into a probe status.
func statusFromMetrics(s string) Status {
	switch s {
	case metrics.StatusHealthy:
		return StatusHealthy
	case metrics.StatusDegraded:
		return StatusDegraded
	case metrics.StatusUnhealthy:
		return StatusUnhealthy
	case metrics.StatusCritical:
		return StatusCritical
	default:
		return StatusUnhealthy
	}
}

// Report is the combined health verdict, shaped for a monitoring endpoint.
type Report struct {
	OverallStatus Status                 `json:"status"`
	Timestamp     time.Time              `json:"timestamp"`
	Checks        map[string]CheckResult `json:"checks,omitempty"`
	ErrorMetrics  *metrics.Summary       `json:"error_metrics,omitempty"`
}

// CheckResult is one probe's outcome within a Report.
type CheckResult struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func newCheckResult(r Result) CheckResult {
	cr := CheckResult{
		Status:   r.Status,
		Message:  r.Message,
		Duration: r.Duration.String(),
		Details:  r.Details,
	}
	if r.Error != nil {
		cr.Error = r.Error.Error()
	}
	return cr
}
