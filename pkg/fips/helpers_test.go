package fips

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
)

var (
	userCredential    = []byte(constants.DefaultUserCredential)
	officerCredential = []byte(constants.DefaultCryptoOfficerCredential)
)

func testConfig(compliance bool) Config {
	cfg := DefaultConfig()
	cfg.ComplianceMode = compliance
	return cfg
}

type testModule struct {
	*Module
	trail  *audit.MemoryWriter
	tracer *metrics.SimpleTracer
	clock  *fakeClock
}

func newTestModule(t *testing.T, cfg Config, opts ...Option) *testModule {
	t.Helper()
	tm := &testModule{
		trail:  audit.NewMemoryWriter(),
		tracer: metrics.NewSimpleTracer(),
		clock:  newFakeClock(),
	}
	base := []Option{
		WithLogger(metrics.NullLogger()),
		WithTracer(tm.tracer),
		WithAuditWriter(tm.trail),
		WithCollector(metrics.NewCollector(nil)),
		WithClock(tm.clock.Now),
	}
	m, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	tm.Module = m
	return tm
}

// operationalModule returns a module that passed POST with a User session.
func operationalModule(t *testing.T, cfg Config, opts ...Option) *testModule {
	t.Helper()
	tm := newTestModule(t, cfg, opts...)
	require.NoError(t, tm.RunPOST(context.Background()))
	require.NoError(t, tm.Login(RoleUser, userCredential))
	return tm
}

func (tm *testModule) countEvents(typ audit.EventType) int {
	n := 0
	for _, e := range tm.trail.Types() {
		if e == typ {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var errAuditDown = errors.New("audit sink unavailable")

// failingWriter rejects every event.
type failingWriter struct{}

func (failingWriter) Write(*audit.Event) error { return errAuditDown }
func (failingWriter) Close() error             { return nil }
func (failingWriter) LastHash() string         { return audit.GenesisHash }
