package health

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// MemoryCheckerConfig configures the memory probe.
type MemoryCheckerConfig struct {
	// WarningThreshold is the fraction of MaxAlloc that triggers degraded.
	// Must be in (0, 1). Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the fraction of MaxAlloc that triggers unhealthy.
	// Must be in (0, 1) and above WarningThreshold. Default: 0.95
	CriticalThreshold float64

	// MaxAlloc is the allocation budget in bytes. Zero means use the
	// runtime's obtained-from-OS total as the budget.
	MaxAlloc uint64
}

// MemoryChecker probes heap usage against an allocation budget.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

// NewMemoryChecker creates a memory probe.
func NewMemoryChecker(config ...MemoryCheckerConfig) *MemoryChecker {
	cfg := MemoryCheckerConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.WarningThreshold <= 0 || cfg.WarningThreshold >= 1 {
		cfg.WarningThreshold = 0.8
	}
	if cfg.CriticalThreshold <= 0 || cfg.CriticalThreshold >= 1 {
		cfg.CriticalThreshold = 0.95
	}
	if cfg.CriticalThreshold < cfg.WarningThreshold {
		cfg.CriticalThreshold = cfg.WarningThreshold
	}

	return &MemoryChecker{config: cfg}
}

// Name returns the name of this checker.
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check reads the runtime memory stats and judges them against the budget.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}

	usageRatio := float64(stats.Alloc) / float64(maxAlloc)

	details := map[string]any{
		"alloc_bytes":   stats.Alloc,
		"max_alloc":     maxAlloc,
		"usage_percent": usageRatio * 100,
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	switch {
	case usageRatio >= m.config.CriticalThreshold:
		return Unhealthy(
			fmt.Sprintf("memory usage critical: %.1f%%", usageRatio*100),
			ErrCheckFailed,
		).WithDetails(details)
	case usageRatio >= m.config.WarningThreshold:
		return Degraded(
			fmt.Sprintf("memory usage high: %.1f%%", usageRatio*100),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("memory usage normal: %.1f%%", usageRatio*100),
		).WithDetails(details)
	}
}

// UptimeChecker reports how long the process has been running. It is always
// healthy; the uptime itself is the signal.
type UptimeChecker struct {
	start time.Time
}

// NewUptimeChecker creates an uptime probe anchored at the current time.
func NewUptimeChecker() *UptimeChecker {
	return &UptimeChecker{start: time.Now()}
}

// Name returns the name of this checker.
func (u *UptimeChecker) Name() string {
	return "uptime"
}

// Check reports the process uptime.
func (u *UptimeChecker) Check(ctx context.Context) Result {
	uptime := time.Since(u.start)
	return Healthy(fmt.Sprintf("up %s", uptime.Round(time.Second))).WithDetails(map[string]any{
		"uptime_seconds": uptime.Seconds(),
		"started_at":     u.start.UTC().Format(time.RFC3339),
	})
}
