package fips

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto/cryptotest"
	"github.com/pzverkov/quantum-go-fips/pkg/integrity"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
	"github.com/pzverkov/quantum-go-fips/pkg/selftest"
)

func testIDs(r *Report) []selftest.TestID {
	ids := make([]selftest.TestID, len(r.Results))
	for i, res := range r.Results {
		ids[i] = res.Test
	}
	return ids
}

func TestPOSTPasses(t *testing.T) {
	tests := []struct {
		name       string
		compliance bool
		want       []selftest.TestID
	}{
		{
			name: "non-compliance",
			want: []selftest.TestID{
				selftest.TestHashCAST, selftest.TestHashCAST, selftest.TestHashCAST, selftest.TestHashCAST,
				selftest.TestPCT, selftest.TestPCT,
			},
		},
		{
			name:       "compliance",
			compliance: true,
			want: []selftest.TestID{
				selftest.TestHashCAST, selftest.TestHashCAST, selftest.TestHashCAST, selftest.TestHashCAST,
				selftest.TestKAT, selftest.TestKAT,
				selftest.TestPCT, selftest.TestPCT,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModule(t, testConfig(tt.compliance))
			assert.Nil(t, m.LastReport())
			assert.ErrorIs(t, m.HealthCheck(), qerrors.ErrNotInitialized)

			require.NoError(t, m.RunPOST(context.Background()))
			assert.Equal(t, StateOperational, m.Query())
			assert.NoError(t, m.HealthCheck())

			report := m.LastReport()
			require.NotNil(t, report)
			assert.True(t, report.Passed)
			assert.Empty(t, report.Error)
			assert.Equal(t, tt.want, testIDs(report))
			for _, r := range report.Results {
				assert.True(t, r.Passed(), "%s/%s", r.Test, r.Name)
			}

			assert.Equal(t, 1, m.countEvents(audit.EventPOSTPassed))
			assert.Equal(t, 2, m.countEvents(audit.EventStateChanged))
		})
	}
}

func TestPOSTIsRepeatable(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	for i := 0; i < 3; i++ {
		require.NoError(t, m.RunPOST(context.Background()))
		assert.True(t, m.IsOperational())
	}
	assert.Equal(t, 3, m.countEvents(audit.EventPOSTPassed))
}

func TestPOSTCASTFailure(t *testing.T) {
	casts := selftest.DefaultHashCASTs()
	casts[1] = casts[1].WithExpected(make([]byte, 64))

	m := newTestModule(t, testConfig(false), WithHashCASTs(casts...))
	err := m.RunPOST(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, qerrors.ErrCASTFailure)
	assert.True(t, qerrors.IsSelfTestFailure(err))

	var ste *qerrors.SelfTestError
	require.True(t, errors.As(err, &ste))
	assert.Equal(t, "SHA3-512", ste.Name)

	assert.Equal(t, StateError, m.Query())
	report := m.LastReport()
	require.NotNil(t, report)
	assert.False(t, report.Passed)
	assert.Len(t, report.Results, 2, "sequence stops at the first failure")
	assert.Equal(t, err.Error(), report.Error)
	assert.Equal(t, 1, m.countEvents(audit.EventPOSTFailed))

	// No role can use the module in the error state.
	for _, tc := range []struct {
		role Role
		cred []byte
	}{{RoleUser, userCredential}, {RoleCryptoOfficer, officerCredential}} {
		require.NoError(t, m.Login(tc.role, tc.cred))
		_, _, err := m.GenerateKEMKeyPair(nil)
		assert.ErrorIs(t, err, qerrors.ErrErrorState, tc.role.String())
		_, err = m.Sign(nil, []byte("m"), nil, false)
		assert.ErrorIs(t, err, qerrors.ErrErrorState, tc.role.String())
	}
}

func TestPOSTRecoversAfterFailure(t *testing.T) {
	k := cryptotest.NewKEM(crypto.MLKEM1024{}, cryptotest.FaultKeyGen)
	m := newTestModule(t, testConfig(false), WithKEM(k))

	require.Error(t, m.RunPOST(context.Background()))
	assert.Equal(t, StateError, m.Query())

	k.Clear()
	require.NoError(t, m.RunPOST(context.Background()))
	assert.Equal(t, StateOperational, m.Query())
}

func TestPOSTKATFailure(t *testing.T) {
	s := cryptotest.NewSigner(crypto.MLDSA65{}, cryptotest.FaultSignature)
	m := newTestModule(t, testConfig(true), WithSigner(s))

	err := m.RunPOST(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, qerrors.ErrKATFailure)
	assert.Equal(t, StateError, m.Query())

	report := m.LastReport()
	require.Len(t, report.Results, 6)
	assert.True(t, report.Results[4].Passed(), "KEM KAT runs first")
	assert.Equal(t, "ML-DSA-65", report.Results[5].Name)
}

func TestPOSTKATSkippedOutsideCompliance(t *testing.T) {
	v := selftest.DefaultKEMVector()
	v.SharedSecret = make([]byte, len(v.SharedSecret))

	m := newTestModule(t, testConfig(false), WithKEMVector(v))
	require.NoError(t, m.RunPOST(context.Background()))

	m = newTestModule(t, testConfig(true), WithKEMVector(v))
	err := m.RunPOST(context.Background())
	assert.ErrorIs(t, err, qerrors.ErrKATFailure)
}

func TestPOSTPCTFailure(t *testing.T) {
	for _, fault := range []cryptotest.Fault{
		cryptotest.FaultKeyGen,
		cryptotest.FaultDecapsulatedSecret,
		cryptotest.FaultZeroSecret,
		cryptotest.FaultDecapsulate,
	} {
		k := cryptotest.NewKEM(crypto.MLKEM1024{}, fault)
		m := newTestModule(t, testConfig(false), WithKEM(k))

		err := m.RunPOST(context.Background())
		require.Error(t, err, "fault %d", fault)
		assert.ErrorIs(t, err, qerrors.ErrPCTFailure, "fault %d", fault)
		assert.Equal(t, StateError, m.Query())
	}

	s := cryptotest.NewSigner(crypto.MLDSA65{}, cryptotest.FaultVerify)
	m := newTestModule(t, testConfig(false), WithSigner(s))
	assert.ErrorIs(t, m.RunPOST(context.Background()), qerrors.ErrPCTFailure)
}

func TestPOSTDisabledFamilyNotTested(t *testing.T) {
	cfg := testConfig(true)
	cfg.KEMEnabled = false
	k := cryptotest.NewKEM(crypto.MLKEM1024{}, cryptotest.FaultKeyGen)

	m := operationalModule(t, cfg, WithKEM(k))
	assert.Len(t, m.LastReport().Results, 6)

	_, _, err := m.GenerateKEMKeyPair(nil)
	assert.ErrorIs(t, err, qerrors.ErrAlgorithmDisabled)
	_, _, err = m.Encapsulate(make(crypto.KEMPublicKey, 1568), nil)
	assert.ErrorIs(t, err, qerrors.ErrAlgorithmDisabled)

	_, _, err = m.GenerateSigningKeyPair(nil)
	assert.NoError(t, err)
}

type failingLocator struct{ err error }

func (l failingLocator) Locate() (integrity.Region, error) { return integrity.Region{}, l.err }

func TestPOSTIntegrity(t *testing.T) {
	code := []byte("\x90\x90\xc3 pretend machine code")
	good := integrity.Compute(code)

	t.Run("match", func(t *testing.T) {
		m := newTestModule(t, testConfig(true),
			WithLocator(integrity.StaticLocator{Name: ".text", Data: code}),
			WithExpectedDigest(good))
		require.NoError(t, m.RunPOST(context.Background()))

		results := m.LastReport().Results
		require.Len(t, results, 9)
		assert.Equal(t, selftest.TestIntegrity, results[8].Test)
		assert.True(t, m.Status().IntegrityProvisioned)
	})

	t.Run("mismatch", func(t *testing.T) {
		tampered := append([]byte(nil), code...)
		tampered[0] ^= 0xff
		m := newTestModule(t, testConfig(true),
			WithLocator(integrity.StaticLocator{Data: tampered}),
			WithExpectedDigest(good))

		err := m.RunPOST(context.Background())
		assert.ErrorIs(t, err, qerrors.ErrIntegrityCheckFailure)
		assert.Equal(t, StateError, m.Query())
	})

	t.Run("unsupported platform", func(t *testing.T) {
		m := newTestModule(t, testConfig(true),
			WithLocator(failingLocator{err: errors.New("no text section")}),
			WithExpectedDigest(good))

		err := m.RunPOST(context.Background())
		assert.ErrorIs(t, err, qerrors.ErrPlatform)
		assert.Equal(t, StateError, m.Query())
	})

	t.Run("not run outside compliance", func(t *testing.T) {
		m := newTestModule(t, testConfig(false),
			WithLocator(failingLocator{err: qerrors.ErrPlatform}),
			WithExpectedDigest(good))
		require.NoError(t, m.RunPOST(context.Background()))
		assert.Len(t, m.LastReport().Results, 6)
	})

	t.Run("not provisioned", func(t *testing.T) {
		m := newTestModule(t, testConfig(true),
			WithLocator(failingLocator{err: qerrors.ErrPlatform}))
		require.NoError(t, m.RunPOST(context.Background()))
		assert.False(t, m.Status().IntegrityProvisioned)
	})
}

func TestPOSTConcurrentCallers(t *testing.T) {
	m := newTestModule(t, testConfig(false))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.RunPOST(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, m.IsOperational())
	n := m.countEvents(audit.EventPOSTPassed)
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, callers)
}

func TestRunPOSTOrPanic(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	assert.NotPanics(t, m.RunPOSTOrPanic)

	k := cryptotest.NewKEM(crypto.MLKEM1024{}, cryptotest.FaultKeyGen)
	bad := newTestModule(t, testConfig(false), WithKEM(k))
	assert.Panics(t, bad.RunPOSTOrPanic)
}

func TestResetAfterPOST(t *testing.T) {
	m := operationalModule(t, testConfig(false))
	m.State().Reset()

	assert.Equal(t, StateUninitialized, m.Query())
	_, _, err := m.GenerateKEMKeyPair(nil)
	assert.ErrorIs(t, err, qerrors.ErrNotInitialized)

	require.NoError(t, m.RunPOST(context.Background()))
	_, _, err = m.GenerateKEMKeyPair(nil)
	assert.NoError(t, err)
}

func TestPOSTSpans(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	require.NoError(t, m.RunPOST(context.Background()))

	spans := m.tracer.Spans()
	require.Len(t, spans, 7)

	root := spans[len(spans)-1]
	assert.Equal(t, metrics.SpanPOST, root.Name)
	assert.NoError(t, root.Error)
	for _, s := range spans[:len(spans)-1] {
		assert.Equal(t, metrics.SpanSelfTest, s.Name)
		assert.Equal(t, root.SpanID, s.ParentID)
		assert.Equal(t, root.TraceID, s.TraceID)
		assert.Contains(t, s.Attributes, "selftest.class")
	}
}

func TestStatus(t *testing.T) {
	m := operationalModule(t, testConfig(false))
	s := m.Status()

	assert.Equal(t, StateOperational, s.State)
	assert.Equal(t, RoleUser, s.Role)
	assert.False(t, s.ComplianceMode)
	assert.True(t, s.KEMEnabled)
	assert.False(t, s.IntegrityProvisioned)
	require.NotNil(t, s.LastPOST)
	assert.True(t, s.LastPOST.Passed)
}
