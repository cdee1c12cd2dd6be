// Package metrics provides observability primitives for the FIPS module.
//
// # Overview
//
// The package bundles the ambient observability stack of the module:
//   - Prometheus collectors for self-tests, state transitions and operations
//   - Tracing of POST phases (OpenTelemetry with the "otel" build tag)
//   - Structured leveled logging on top of go-kit/log
//   - Health, liveness and readiness endpoints on a chi router
//
// # Metrics
//
// A Collector registers its metric families on a Prometheus registry:
//
//	collector := metrics.NewCollector(prometheus.NewRegistry())
//	collector.RecordPOST("pass")
//	collector.RecordSelfTest("kat", "ML-KEM-1024", "pass", d)
//	collector.SetState("operational", "uninitialized", "self_test", "operational", "error")
//
// A nil *Collector is accepted everywhere and records nothing.
//
// # Tracing
//
//	tracer := metrics.NewSimpleTracer()
//	ctx, end := tracer.StartSpan(ctx, metrics.SpanPOST)
//	defer end(nil) // or end(err) on failure
//
// Build with -tags otel to route spans to the global OpenTelemetry provider:
//
//	metrics.SetTracer(metrics.NewOTelTracer(""))
//
// # Structured Logging
//
//	logger := metrics.NewLogger(
//		metrics.WithLevel(metrics.LevelInfo),
//		metrics.WithFormat(metrics.FormatJSON),
//	)
//	logger.Named("post").Info("self-test passed", metrics.Fields{"test": "kat"})
//
// # Observability Server
//
//	server := metrics.NewServer(metrics.ServerConfig{
//		Collector: collector,
//		Version:   "1.0.0",
//	})
//	server.AddHealthCheck("module", module.HealthCheck)
//	srv := server.HTTPServer(":9090")
//
// This provides:
//   - /metrics - Prometheus metrics
//   - /health  - Detailed health status
//   - /healthz - liveness probe
//   - /readyz  - readiness probe
package metrics
