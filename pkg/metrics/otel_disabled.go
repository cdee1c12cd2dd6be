//go:build !otel
// +build !otel

package metrics

import "context"

// OTelTracer is the stub used when the module is built without the otel tag.
// Spans passed through it are dropped.
type OTelTracer struct{}

// NewOTelTracer returns a no-op tracer; serviceName is ignored.
func NewOTelTracer(serviceName string) *OTelTracer {
	return &OTelTracer{}
}

// StartSpan returns ctx unchanged.
func (t *OTelTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, SpanEnder) {
	return ctx, func(err error) {}
}

// OTelEnabled reports whether OpenTelemetry support is built in.
func OTelEnabled() bool {
	return false
}
