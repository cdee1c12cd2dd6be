package fips

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
)

func TestCSPExportBlockedInCompliance(t *testing.T) {
	m := operationalModule(t, testConfig(true))
	assert.ErrorIs(t, m.ExportBlocked(), qerrors.ErrCSPExportBlocked)

	pk, sk, err := m.GenerateKEMKeyPair(nil)
	require.NoError(t, err)
	_, ss, err := m.Encapsulate(pk, nil)
	require.NoError(t, err)
	_, dsk, err := m.GenerateSigningKeyPair(nil)
	require.NoError(t, err)

	for _, tc := range []struct {
		role Role
		cred []byte
	}{{RoleUser, userCredential}, {RoleCryptoOfficer, officerCredential}} {
		require.NoError(t, m.Login(tc.role, tc.cred))

		out, err := m.ExportKEMPrivateKey(sk)
		assert.ErrorIs(t, err, qerrors.ErrCSPExportBlocked, tc.role.String())
		assert.Nil(t, out)
		_, err = m.ExportSigningKey(dsk)
		assert.ErrorIs(t, err, qerrors.ErrCSPExportBlocked, tc.role.String())
		_, err = m.ExportSharedSecret(ss)
		assert.ErrorIs(t, err, qerrors.ErrCSPExportBlocked, tc.role.String())
	}

	assert.Equal(t, 6, m.countEvents(audit.EventCSPBlocked))
	assert.Zero(t, m.countEvents(audit.EventCSPExport))

	m.Logout()
	_, err = m.ExportKEMPrivateKey(sk)
	assert.ErrorIs(t, err, qerrors.ErrCSPExportBlocked, "no session")
}

func TestCSPExportOutsideCompliance(t *testing.T) {
	m := operationalModule(t, testConfig(false))
	assert.NoError(t, m.ExportBlocked())

	_, sk, err := m.GenerateKEMKeyPair(nil)
	require.NoError(t, err)

	out, err := m.ExportKEMPrivateKey(sk)
	require.NoError(t, err)
	assert.Equal(t, []byte(sk), out)

	out[0] ^= 0xff
	assert.NotEqual(t, sk[0], out[0], "export returns a copy")

	_, dsk, err := m.GenerateSigningKeyPair(nil)
	require.NoError(t, err)
	_, err = m.ExportSigningKey(dsk)
	require.NoError(t, err)

	events := m.trail.Events()
	last := events[len(events)-1]
	assert.Equal(t, audit.EventCSPExport, last.EventType)
	assert.Equal(t, CSPSigningKey, last.Context.CSP)
	assert.Equal(t, "user", last.Actor.ID)
	assert.Equal(t, 2, m.countEvents(audit.EventCSPExport))
}

func TestCSPExportInvalidSize(t *testing.T) {
	m := operationalModule(t, testConfig(false))

	_, err := m.ExportSharedSecret(make([]byte, 16))
	assert.ErrorIs(t, err, qerrors.ErrInvalidKeySize)
	_, err = m.ExportKEMPrivateKey(nil)
	assert.ErrorIs(t, err, qerrors.ErrInvalidKeySize)
	assert.Zero(t, m.countEvents(audit.EventCSPExport))
}

func TestCSPExportRequiresOperational(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	_, err := m.ExportSharedSecret(make([]byte, 32))
	assert.ErrorIs(t, err, qerrors.ErrNotInitialized)

	// The state check precedes the export block.
	c := newTestModule(t, testConfig(true))
	_, err = c.ExportSharedSecret(make([]byte, 32))
	assert.ErrorIs(t, err, qerrors.ErrNotInitialized)
}

func TestCSPExportFailsWithoutAudit(t *testing.T) {
	m := newTestModule(t, testConfig(false), WithAuditWriter(failingWriter{}))
	require.NoError(t, m.RunPOST(context.Background()))

	out, err := m.ExportSharedSecret(make([]byte, 32))
	assert.ErrorIs(t, err, errAuditDown)
	assert.Nil(t, out)
}
