package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
)

// Collector holds the Prometheus collectors of one cryptographic module.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	postRuns         *prometheus.CounterVec
	selfTestRuns     *prometheus.CounterVec
	selfTestDuration *prometheus.HistogramVec
	moduleState      *prometheus.GaugeVec
	stateTransitions *prometheus.CounterVec
	operations       *prometheus.CounterVec
	logins           *prometheus.CounterVec
	cspExports       *prometheus.CounterVec
}

// NewCollector registers the module collectors on reg. A nil reg creates a
// private registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	ns := constants.MetricsNamespace
	f := promauto.With(reg)

	return &Collector{
		registry: reg,
		postRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "post_runs_total",
			Help:      "Power-on self-test executions by outcome.",
		}, []string{"result"}),
		selfTestRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "selftest_runs_total",
			Help:      "Individual self-test executions by class, check and outcome.",
		}, []string{"test", "name", "result"}),
		selfTestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "selftest_duration_seconds",
			Help:      "Wall time of individual self-tests.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"test"}),
		moduleState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "module_state",
			Help:      "1 for the current state of the module state machine.",
		}, []string{"state"}),
		stateTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "state_transitions_total",
			Help:      "Module state transitions by destination state.",
		}, []string{"to"}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "operations_total",
			Help:      "Cryptographic operations by name and outcome.",
		}, []string{"op", "result"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "login_attempts_total",
			Help:      "Operator login attempts by role and outcome.",
		}, []string{"role", "result"}),
		cspExports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "csp_export_attempts_total",
			Help:      "Plaintext CSP export attempts by CSP kind and outcome.",
		}, []string{"csp", "result"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordPOST counts a completed POST.
func (c *Collector) RecordPOST(result string) {
	if c == nil {
		return
	}
	c.postRuns.WithLabelValues(result).Inc()
}

// RecordSelfTest counts one self-test and observes its duration.
func (c *Collector) RecordSelfTest(test, name, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.selfTestRuns.WithLabelValues(test, name, result).Inc()
	c.selfTestDuration.WithLabelValues(test).Observe(d.Seconds())
}

// SetState marks current as the only active state.
func (c *Collector) SetState(current string, all ...string) {
	if c == nil {
		return
	}
	for _, s := range all {
		if s != current {
			c.moduleState.WithLabelValues(s).Set(0)
		}
	}
	c.moduleState.WithLabelValues(current).Set(1)
}

// RecordTransition counts a state transition.
func (c *Collector) RecordTransition(to string) {
	if c == nil {
		return
	}
	c.stateTransitions.WithLabelValues(to).Inc()
}

// RecordOperation counts a cryptographic operation.
func (c *Collector) RecordOperation(op, result string) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(op, result).Inc()
}

// RecordLogin counts a login attempt.
func (c *Collector) RecordLogin(role, result string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(role, result).Inc()
}

// RecordCSPExport counts a CSP export attempt.
func (c *Collector) RecordCSPExport(csp, result string) {
	if c == nil {
		return
	}
	c.cspExports.WithLabelValues(csp, result).Inc()
}
