package health

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/toolguard/metrics"
)

func healthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy("ok")
	})
}

func TestMonitor_RegisterUnregister(t *testing.T) {
	m := NewMonitor(nil)

	m.Register(healthyChecker("first"))
	m.Register(healthyChecker("second"))
	m.Register(healthyChecker("first")) // replace, not duplicate

	names := m.CheckerNames()
	if len(names) != 2 || names[0] != "first" || names[1] != "second" {
		t.Errorf("CheckerNames() = %v, want [first second]", names)
	}

	m.Unregister("first")
	names = m.CheckerNames()
	if len(names) != 1 || names[0] != "second" {
		t.Errorf("CheckerNames() after unregister = %v, want [second]", names)
	}
}

func TestMonitor_Check(t *testing.T) {
	m := NewMonitor(nil)
	m.Register(healthyChecker("db"))

	result, err := m.Check(context.Background(), "db")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}

	if _, err := m.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) error = %v, want ErrCheckerNotFound", err)
	}
}

func TestMonitor_RunChecks_AllHealthy(t *testing.T) {
	m := NewMonitor(nil)
	m.Register(healthyChecker("db"))
	m.Register(healthyChecker("cache"))

	report := m.RunChecks(context.Background())

	if report.OverallStatus != StatusHealthy {
		t.Errorf("OverallStatus = %v, want StatusHealthy", report.OverallStatus)
	}
	if len(report.Checks) != 2 {
		t.Errorf("len(Checks) = %d, want 2", len(report.Checks))
	}
	if report.ErrorMetrics != nil {
		t.Error("ErrorMetrics present without a recorder")
	}
}

func TestMonitor_RunChecks_WorstProbeWins(t *testing.T) {
	m := NewMonitor(nil)
	m.Register(healthyChecker("db"))
	m.Register(NewCheckerFunc("cache", func(ctx context.Context) Result {
		return Degraded("evicting aggressively")
	}))
	m.Register(NewCheckerFunc("upstream", func(ctx context.Context) Result {
		return Unhealthy("unreachable", errors.New("dial tcp: refused"))
	}))

	report := m.RunChecks(context.Background())

	if report.OverallStatus != StatusUnhealthy {
		t.Errorf("OverallStatus = %v, want StatusUnhealthy", report.OverallStatus)
	}
	if report.Checks["upstream"].Error == "" {
		t.Error("failing probe's error missing from report")
	}
	// A failing probe must not abort the rest.
	if report.Checks["db"].Status != StatusHealthy {
		t.Errorf("db status = %v, want StatusHealthy", report.Checks["db"].Status)
	}
}

func TestMonitor_RunChecks_ProbeTimeout(t *testing.T) {
	m := NewMonitor(nil, MonitorConfig{Timeout: 20 * time.Millisecond})
	m.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		select {
		case <-time.After(time.Second):
			return Healthy("finally")
		case <-ctx.Done():
			return Unhealthy("cancelled", ctx.Err())
		}
	}))

	report := m.RunChecks(context.Background())

	if report.OverallStatus != StatusUnhealthy {
		t.Errorf("OverallStatus = %v, want StatusUnhealthy on timeout", report.OverallStatus)
	}
}

func TestMonitor_RunChecks_FoldsErrorMetrics(t *testing.T) {
	recorder := metrics.NewRecorder()
	m := NewMonitor(recorder)
	m.Register(healthyChecker("db"))

	// Clean window: probes decide alone.
	report := m.RunChecks(context.Background())
	if report.OverallStatus != StatusHealthy {
		t.Fatalf("OverallStatus = %v, want StatusHealthy with clean window", report.OverallStatus)
	}
	if report.ErrorMetrics == nil {
		t.Fatal("ErrorMetrics missing from report")
	}

	// A recent error against near-zero uptime pushes the window verdict to
	// critical; the fold must surface it even though every probe passes.
	recorder.RecordError(context.Background(), metrics.Record{
		ErrorType: "http_error",
		Service:   "jira",
	})

	report = m.RunChecks(context.Background())
	if report.OverallStatus != StatusCritical {
		t.Errorf("OverallStatus = %v, want StatusCritical from error window", report.OverallStatus)
	}
	if report.ErrorMetrics.TotalErrors != 1 {
		t.Errorf("ErrorMetrics.TotalErrors = %d, want 1", report.ErrorMetrics.TotalErrors)
	}
}

func TestMonitor_RunChecks_Coalesced(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})

	m := NewMonitor(nil)
	m.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		runs.Add(1)
		<-release
		return Healthy("ok")
	}))

	const callers = 5
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report := m.RunChecks(context.Background())
			if report.OverallStatus != StatusHealthy {
				t.Errorf("OverallStatus = %v, want StatusHealthy", report.OverallStatus)
			}
		}()
	}

	// Let every caller reach the in-flight sweep before releasing the probe.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := runs.Load(); got != 1 {
		t.Errorf("probe ran %d times for %d concurrent callers, want 1", got, callers)
	}
}

func TestMonitor_RunChecks_NoCheckers(t *testing.T) {
	m := NewMonitor(nil)

	report := m.RunChecks(context.Background())
	if report.OverallStatus != StatusHealthy {
		t.Errorf("OverallStatus = %v, want StatusHealthy with nothing registered", report.OverallStatus)
	}
	if len(report.Checks) != 0 {
		t.Errorf("len(Checks) = %d, want 0", len(report.Checks))
	}
}
