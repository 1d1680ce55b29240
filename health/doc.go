// Package health combines liveness probes and the error-metrics window into
// one health verdict with an HTTP surface.
//
// A Monitor holds named probes (anything implementing Checker) and an
// optional error recorder. RunChecks executes every probe concurrently under
// a shared deadline, folds in the recorder's verdict, and returns a Report:
// the overall status is the worst of all probe statuses and the error-window
// status, so the system is healthy only when every probe passes and the
// error rate is clean.
//
//	monitor := health.NewMonitor(recorder)
//	monitor.Register(health.NewMemoryChecker())
//	monitor.Register(health.NewUptimeChecker())
//
//	report := monitor.RunChecks(ctx)
//
// Statuses escalate healthy -> degraded -> unhealthy -> critical. Degraded
// still serves 200 from the HTTP handlers; unhealthy and critical serve 503.
//
// RegisterHandlers wires the standard endpoints onto a mux: /healthz for
// liveness, /health for the full JSON report, /metrics/errors for the raw
// error summary.
package health
