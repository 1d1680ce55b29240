// Package observe provides the telemetry primitives for tool operations:
// structured logging, OpenTelemetry tracing, and execution metrics.
//
// An Observer bundles the three concerns behind one bootstrap:
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "toolguard",
//	    Tracing:     observe.TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 0.1},
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//
// The Logger emits one JSON object per entry and automatically attaches the
// correlation ID carried in the context, so a single operation can be traced
// across retries, error records, and response envelopes. Field keys that
// look like secrets are redacted (see RedactedFields).
//
// OpMeta names one operation (service + tool); Tracer and Metrics key their
// spans and instruments off it. Exporters are selected by name at startup
// (otlp, prometheus, stdout, none); see the exporters subpackage.
package observe
