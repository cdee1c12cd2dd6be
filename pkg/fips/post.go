package fips

import (
	"context"
	"fmt"
	"time"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/integrity"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
	"github.com/pzverkov/quantum-go-fips/pkg/selftest"
)

// Report describes the last completed POST.
type Report struct {
	Started  time.Time         `json:"started"`
	Duration time.Duration     `json:"duration"`
	Passed   bool              `json:"passed"`
	Results  []selftest.Result `json:"results"`
	Error    string            `json:"error,omitempty"`
}

// LastReport returns a copy of the last POST report, or nil before the
// first POST completes.
func (m *Module) LastReport() *Report {
	m.reportMu.RLock()
	defer m.reportMu.RUnlock()
	if m.report == nil {
		return nil
	}
	r := *m.report
	r.Results = append([]selftest.Result(nil), m.report.Results...)
	return &r
}

// RunPOST runs the power-on self-test:
//
//  1. hash CASTs
//  2. KATs of every enabled family (compliance mode only)
//  3. key generation from the internal seed and a PCT for every enabled family
//  4. the software integrity check (compliance mode, provisioned builds only)
//
// The first failure stops the sequence, moves the module to the error state
// and is returned as a *errors.SelfTestError. On success the module becomes
// operational. Concurrent callers share a single run and its outcome.
//
// ctx carries tracing only; a POST is never cancelled.
func (m *Module) RunPOST(ctx context.Context) error {
	_, err, _ := m.post.Do("post", func() (interface{}, error) {
		return nil, m.runPOST(ctx)
	})
	return err
}

// RunPOSTOrPanic runs the POST and panics on failure. Use it at boot only.
func (m *Module) RunPOSTOrPanic() {
	if err := m.RunPOST(context.Background()); err != nil {
		panic(fmt.Sprintf("fips: power-on self-test failed: %v", err))
	}
}

func (m *Module) runPOST(ctx context.Context) error {
	ctx, end := m.tracer.StartSpan(ctx, metrics.SpanPOST)
	log := m.logger.Named("post")
	start := m.now()

	m.state.enterSelfTest()
	log.Info("power-on self-test started", metrics.Fields{
		"compliance_mode":   m.cfg.ComplianceMode,
		"kem_enabled":       m.cfg.KEMEnabled,
		"signature_enabled": m.cfg.SignatureEnabled,
	})

	p := &postRun{m: m, ctx: ctx, log: log}
	err := p.run()
	if err != nil {
		m.state.enterError()
	} else if !m.state.enterOperational() {
		// The state was reset while the self-tests ran.
		err = m.state.Require()
		if err == nil {
			err = qerrors.ErrNotInitialized
		}
	}

	report := &Report{
		Started:  start,
		Duration: m.now().Sub(start),
		Passed:   err == nil,
		Results:  p.results,
	}
	if err != nil {
		report.Error = err.Error()
	}
	m.reportMu.Lock()
	m.report = report
	m.reportMu.Unlock()

	if err != nil {
		m.collector.RecordPOST("fail")
		log.Error("power-on self-test failed", metrics.Fields{"error": err.Error()})
		_ = m.record(audit.NewEvent(audit.EventPOSTFailed, audit.ResultFailure, m.now()).
			WithContext(audit.Context{Test: failedTest(err), Reason: err.Error()}))
	} else {
		m.collector.RecordPOST("pass")
		log.Info("power-on self-test passed", metrics.Fields{
			"tests":    len(p.results),
			"duration": report.Duration.String(),
		})
		_ = m.record(audit.NewEvent(audit.EventPOSTPassed, audit.ResultSuccess, m.now()))
	}

	end(err)
	return err
}

func failedTest(err error) string {
	var ste *qerrors.SelfTestError
	if qerrors.As(err, &ste) {
		return ste.Test
	}
	return ""
}

// postRun holds the progress of one POST.
type postRun struct {
	m       *Module
	ctx     context.Context
	log     *metrics.Logger
	results []selftest.Result
}

func (p *postRun) run() error {
	m := p.m

	for _, c := range m.casts {
		if err := p.phase(metrics.SpanSelfTest, selftest.TestHashCAST, c.Name, c.Run); err != nil {
			return err
		}
	}

	if m.cfg.ComplianceMode {
		if m.cfg.KEMEnabled {
			err := p.phase(metrics.SpanSelfTest, selftest.TestKAT, m.kem.Name(), func() error {
				return selftest.KEMKAT(m.kem, m.kemVector)
			})
			if err != nil {
				return err
			}
		}
		if m.cfg.SignatureEnabled {
			err := p.phase(metrics.SpanSelfTest, selftest.TestKAT, m.signer.Name(), func() error {
				return selftest.SignatureKAT(m.signer, m.sigVector)
			})
			if err != nil {
				return err
			}
		}
	}

	if m.cfg.KEMEnabled {
		if err := p.phase(metrics.SpanSelfTest, selftest.TestPCT, m.kem.Name(), m.kemPOSTPCT); err != nil {
			return err
		}
	}
	if m.cfg.SignatureEnabled {
		if err := p.phase(metrics.SpanSelfTest, selftest.TestPCT, m.signer.Name(), m.signaturePOSTPCT); err != nil {
			return err
		}
	}

	if m.cfg.ComplianceMode {
		expected, provisioned, err := m.expected()
		if !provisioned {
			p.log.Debug("integrity check skipped: checksum not provisioned")
			return nil
		}
		return p.phase(metrics.SpanIntegrity, selftest.TestIntegrity, integrityCheckName, func() error {
			if err != nil {
				return selftest.Fail(selftest.TestIntegrity, integrityCheckName, "malformed embedded checksum")
			}
			return m.verifyIntegrity(expected)
		})
	}
	return nil
}

// phase runs one self-test and records it.
func (p *postRun) phase(span string, test selftest.TestID, name string, fn func() error) error {
	_, end := p.m.tracer.StartSpan(p.ctx, span, metrics.WithAttributes(
		metrics.SpanAttributes{Test: string(test), Check: name}.ToMap()))

	r := selftest.Measure(test, name, fn)
	end(r.Err)
	p.results = append(p.results, r)
	p.m.collector.RecordSelfTest(string(test), name, r.Outcome(), r.Duration)

	if r.Err != nil {
		p.log.Error("self-test failed", metrics.Fields{
			"test":  string(test),
			"name":  name,
			"error": r.Err.Error(),
		})
		return r.Err
	}
	p.log.Debug("self-test passed", metrics.Fields{
		"test":     string(test),
		"name":     name,
		"duration": r.Duration.String(),
	})
	return nil
}

const integrityCheckName = "code-region"

func (m *Module) verifyIntegrity(expected integrity.Digest) error {
	err := m.verifier.Verify(expected)
	if err == nil {
		return nil
	}
	sentinel := qerrors.ErrIntegrityCheckFailure
	if qerrors.Is(err, qerrors.ErrPlatform) {
		sentinel = qerrors.ErrPlatform
	}
	return qerrors.NewSelfTestError(string(selftest.TestIntegrity), integrityCheckName, sentinel, err.Error())
}

// kemPOSTPCT generates a key pair from the internal POST seed and checks it.
func (m *Module) kemPOSTPCT() error {
	seed := constants.Fill(constants.POSTSeedByte, constants.MLKEMKeySeedSize)
	pk, sk, err := m.kem.GenerateKeyPair(seed)
	if err != nil {
		return selftest.Fail(selftest.TestPCT, m.kem.Name(), "key generation: "+err.Error())
	}
	defer sk.Zeroize()
	return selftest.KEMPCT(m.kem, pk, sk)
}

func (m *Module) signaturePOSTPCT() error {
	seed := constants.Fill(constants.POSTSeedByte, constants.MLDSASeedSize)
	vk, sk, err := m.signer.GenerateKeyPair(seed)
	if err != nil {
		return selftest.Fail(selftest.TestPCT, m.signer.Name(), "key generation: "+err.Error())
	}
	defer sk.Zeroize()
	return selftest.SignaturePCT(m.signer, vk, sk)
}

// operatorPCT runs the PCT of an operator-generated key pair. A failure
// moves the module to the error state.
func (m *Module) operatorPCT(name string, fn func() error) error {
	_, end := m.tracer.StartSpan(context.Background(), metrics.SpanOperatorPCT,
		metrics.WithAttributes(metrics.SpanAttributes{Test: string(selftest.TestPCT), Algorithm: name}.ToMap()))
	r := selftest.Measure(selftest.TestPCT, name, fn)
	end(r.Err)
	m.collector.RecordSelfTest(string(selftest.TestPCT), name, r.Outcome(), r.Duration)
	if r.Err == nil {
		return nil
	}

	m.logger.Named("pct").Error("operator key pair failed consistency test", metrics.Fields{
		"algorithm": name,
		"error":     r.Err.Error(),
	})
	_ = m.record(audit.NewEvent(audit.EventPCTFailed, audit.ResultFailure, m.now()).
		WithContext(audit.Context{Test: string(selftest.TestPCT), Algorithm: name}))
	m.state.enterError()
	return r.Err
}
