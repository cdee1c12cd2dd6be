// Package fips implements the FIPS 140-3 style compliance shell around the
// ML-KEM-1024 and ML-DSA-65 primitives.
//
// A Module owns a state machine, an operator session and the power-on
// self-test (POST). No cryptographic operation is served until the POST has
// passed:
//
//	m, err := fips.New(fips.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	if err := m.RunPOST(ctx); err != nil {
//		return err // module is in the error state
//	}
//	if err := m.Login(fips.RoleUser, credential); err != nil {
//		return err
//	}
//	pk, sk, err := m.GenerateKEMKeyPair(nil)
//
// A failed self-test moves the module to the error state, in which every
// operation fails until a new POST passes. In compliance mode plaintext
// export of private keys and shared secrets is refused.
//
// The package-level functions operate on the process-wide Default module.
package fips

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
	"github.com/pzverkov/quantum-go-fips/pkg/integrity"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
	"github.com/pzverkov/quantum-go-fips/pkg/selftest"
)

// Module is one instance of the cryptographic module. It is safe for
// concurrent use and must not be copied.
type Module struct {
	cfg Config

	kem    crypto.KEM
	signer crypto.Signer

	casts     []selftest.HashCAST
	kemVector selftest.KEMVector
	sigVector selftest.SignatureVector

	verifier *integrity.Verifier
	expected func() (integrity.Digest, bool, error)

	creds   CredentialVerifier
	lockout *lockout

	state   StateRegistry
	session SessionRegistry

	logger    *metrics.Logger
	collector *metrics.Collector
	tracer    metrics.Tracer
	audit     audit.Writer
	now       func() time.Time

	post     singleflight.Group
	reportMu sync.RWMutex
	report   *Report
}

// Option configures a Module.
type Option func(*Module)

// WithKEM replaces the ML-KEM-1024 implementation.
func WithKEM(k crypto.KEM) Option {
	return func(m *Module) { m.kem = k }
}

// WithSigner replaces the ML-DSA-65 implementation.
func WithSigner(s crypto.Signer) Option {
	return func(m *Module) { m.signer = s }
}

// WithHashCASTs replaces the hash self-tests run at POST.
func WithHashCASTs(casts ...selftest.HashCAST) Option {
	return func(m *Module) { m.casts = casts }
}

// WithKEMVector replaces the KEM known-answer vector.
func WithKEMVector(v selftest.KEMVector) Option {
	return func(m *Module) { m.kemVector = v }
}

// WithSignatureVector replaces the signature known-answer vector.
func WithSignatureVector(v selftest.SignatureVector) Option {
	return func(m *Module) { m.sigVector = v }
}

// WithLocator selects where the integrity check reads the code region.
func WithLocator(loc integrity.CodeRegionLocator) Option {
	return func(m *Module) { m.verifier = integrity.NewVerifier(loc) }
}

// WithExpectedDigest provisions the expected integrity checksum directly
// instead of reading the link-time value.
func WithExpectedDigest(d integrity.Digest) Option {
	return func(m *Module) {
		m.expected = func() (integrity.Digest, bool, error) { return d, true, nil }
	}
}

// WithCredentials replaces the verifier built from Config.Credentials.
func WithCredentials(v CredentialVerifier) Option {
	return func(m *Module) { m.creds = v }
}

// WithLogger sets the logger.
func WithLogger(l *metrics.Logger) Option {
	return func(m *Module) { m.logger = l }
}

// WithCollector sets the Prometheus collector.
func WithCollector(c *metrics.Collector) Option {
	return func(m *Module) { m.collector = c }
}

// WithTracer sets the tracer of POST phases.
func WithTracer(t metrics.Tracer) Option {
	return func(m *Module) { m.tracer = t }
}

// WithAuditWriter sets the audit trail.
func WithAuditWriter(w audit.Writer) Option {
	return func(m *Module) { m.audit = w }
}

// WithClock sets the time source used for audit records and lockouts.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// New creates a module in the Uninitialized state.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg:       cfg,
		kem:       crypto.MLKEM1024{},
		signer:    crypto.MLDSA65{},
		casts:     selftest.DefaultHashCASTs(),
		kemVector: selftest.DefaultKEMVector(),
		sigVector: selftest.DefaultSignatureVector(),
		verifier:  integrity.NewVerifier(nil),
		expected:  embeddedDigest,
		logger:    metrics.GetLogger(),
		tracer:    metrics.GetTracer(),
		audit:     audit.NopWriter{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.creds == nil {
		creds, err := cfg.CredentialVerifier()
		if err != nil {
			return nil, err
		}
		m.creds = creds
	}
	if m.logger == nil {
		m.logger = metrics.NullLogger()
	}
	if m.tracer == nil {
		m.tracer = metrics.NoOpTracer{}
	}
	if m.audit == nil {
		m.audit = audit.NopWriter{}
	}

	m.logger = m.logger.Named(constants.ModuleName)
	m.lockout = newLockout(cfg.LockoutPolicy(), m.now)
	m.state.notify = m.onTransition
	m.collector.SetState(StateUninitialized.String(), allStateNames...)

	return m, nil
}

func embeddedDigest() (integrity.Digest, bool, error) {
	if !integrity.Provisioned() {
		return integrity.Digest{}, false, nil
	}
	d, err := integrity.Expected()
	return d, true, err
}

// Config returns the configuration the module was created with.
func (m *Module) Config() Config { return m.cfg }

// State returns the module state machine.
func (m *Module) State() *StateRegistry { return &m.state }

// Session returns the operator session.
func (m *Module) Session() *SessionRegistry { return &m.session }

// Query returns the current state.
func (m *Module) Query() State { return m.state.Query() }

// IsOperational reports whether the module serves operations.
func (m *Module) IsOperational() bool { return m.state.IsOperational() }

// HealthCheck returns nil when the module is operational.
func (m *Module) HealthCheck() error { return m.state.Require() }

// Status is a snapshot of the module for diagnostics.
type Status struct {
	Module               string  `json:"module"`
	State                State   `json:"state"`
	Role                 Role    `json:"role"`
	ComplianceMode       bool    `json:"compliance_mode"`
	KEMEnabled           bool    `json:"kem_enabled"`
	SignatureEnabled     bool    `json:"signature_enabled"`
	IntegrityProvisioned bool    `json:"integrity_provisioned"`
	LastPOST             *Report `json:"last_post,omitempty"`
}

// Status returns a snapshot of the module.
func (m *Module) Status() Status {
	_, provisioned, _ := m.expected()
	return Status{
		Module:               constants.ModuleName,
		State:                m.state.Query(),
		Role:                 m.session.Role(),
		ComplianceMode:       m.cfg.ComplianceMode,
		KEMEnabled:           m.cfg.KEMEnabled,
		SignatureEnabled:     m.cfg.SignatureEnabled,
		IntegrityProvisioned: provisioned,
		LastPOST:             m.LastReport(),
	}
}

func (m *Module) onTransition(from, to State) {
	m.logger.Named("state").Info("state transition", metrics.Fields{
		"from": from.String(),
		"to":   to.String(),
	})
	m.collector.SetState(to.String(), allStateNames...)
	m.collector.RecordTransition(to.String())
	_ = m.record(audit.NewEvent(audit.EventStateChanged, audit.ResultSuccess, m.now()).
		WithContext(audit.Context{State: to.String(), Reason: "from " + from.String()}))
}

// record writes an audit event. Failures are logged and returned.
func (m *Module) record(e *audit.Event) error {
	if err := m.audit.Write(e); err != nil {
		m.logger.Error("audit write failed", metrics.Fields{
			"event": string(e.EventType),
			"error": err.Error(),
		})
		return fmt.Errorf("fips: audit: %w", err)
	}
	return nil
}

func operatorActor(r Role) audit.Actor {
	return audit.Actor{Type: "operator", ID: r.String()}
}
