package fips

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"user", RoleUser, false},
		{" USER ", RoleUser, false},
		{"crypto_officer", RoleCryptoOfficer, false},
		{"crypto-officer", RoleCryptoOfficer, false},
		{"co", RoleCryptoOfficer, false},
		{"none", RoleNone, true},
		{"admin", RoleNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "crypto_officer", RoleCryptoOfficer.String())
	assert.Equal(t, "role(9)", Role(9).String())
}

func TestSessionRegistryExactMatch(t *testing.T) {
	var s SessionRegistry
	assert.False(t, s.IsAuthenticated())
	assert.ErrorIs(t, s.CheckAuthority(RoleUser), qerrors.ErrAuthenticationFailure)
	assert.ErrorIs(t, s.CheckAuthority(RoleNone), qerrors.ErrAuthenticationFailure)

	s.set(RoleCryptoOfficer)
	assert.True(t, s.IsAuthenticated())
	assert.NoError(t, s.CheckAuthority(RoleCryptoOfficer))
	assert.ErrorIs(t, s.CheckAuthority(RoleUser), qerrors.ErrAuthenticationFailure, "no role hierarchy")

	assert.Equal(t, RoleCryptoOfficer, s.clear())
	assert.Equal(t, RoleNone, s.Role())
}

func TestLoginValidCredentials(t *testing.T) {
	tests := []struct {
		role       Role
		credential []byte
	}{
		{RoleUser, userCredential},
		{RoleCryptoOfficer, officerCredential},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			m := newTestModule(t, testConfig(false))
			require.NoError(t, m.Login(tt.role, tt.credential))
			assert.Equal(t, tt.role, m.Role())
			assert.True(t, m.IsAuthenticated())
			assert.NoError(t, m.CheckAuthority(tt.role))

			m.Logout()
			assert.False(t, m.IsAuthenticated())
			assert.Equal(t, 1, m.countEvents(audit.EventLogin))
			assert.Equal(t, 1, m.countEvents(audit.EventLogout))
		})
	}
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	require.NoError(t, m.Login(RoleUser, userCredential))

	bad := [][]byte{
		nil,
		[]byte(""),
		[]byte("admin456 "),
		userCredential, // User secret does not open the Crypto Officer role
	}
	for _, cred := range bad {
		err := m.Login(RoleCryptoOfficer, cred)
		assert.ErrorIs(t, err, qerrors.ErrAuthenticationFailure)
		assert.Equal(t, RoleUser, m.Role())
		m.lockout.success(RoleCryptoOfficer)
	}

	assert.ErrorIs(t, m.Login(RoleNone, nil), qerrors.ErrAuthenticationFailure)
	assert.Equal(t, RoleUser, m.Role())
}

func TestLoginLockout(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	wrong := []byte("wrong")

	require.ErrorIs(t, m.Login(RoleUser, wrong), qerrors.ErrAuthenticationFailure)
	require.ErrorIs(t, m.Login(RoleUser, wrong), qerrors.ErrAuthenticationFailure)

	err := m.Login(RoleUser, wrong)
	require.ErrorIs(t, err, qerrors.ErrAuthenticationFailure)
	require.ErrorIs(t, err, qerrors.ErrLockedOut)
	assert.Equal(t, 1, m.countEvents(audit.EventLockedOut))

	// The right credential is refused while locked.
	err = m.Login(RoleUser, userCredential)
	assert.ErrorIs(t, err, qerrors.ErrLockedOut)
	assert.False(t, m.IsAuthenticated())

	// Other roles are unaffected.
	require.NoError(t, m.Login(RoleCryptoOfficer, officerCredential))

	m.clock.Advance(m.Config().Lockout.Duration + time.Second)
	require.NoError(t, m.Login(RoleUser, userCredential))
	assert.Equal(t, RoleUser, m.Role())
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	wrong := []byte("wrong")

	for i := 0; i < 5; i++ {
		require.ErrorIs(t, m.Login(RoleUser, wrong), qerrors.ErrAuthenticationFailure)
		require.NotErrorIs(t, m.Login(RoleUser, wrong), qerrors.ErrLockedOut)
		require.NoError(t, m.Login(RoleUser, userCredential))
	}
}

func TestLockoutDisabled(t *testing.T) {
	cfg := testConfig(false)
	cfg.Lockout.MaxAttempts = 0
	m := newTestModule(t, cfg)

	for i := 0; i < 10; i++ {
		err := m.Login(RoleUser, []byte("wrong"))
		require.ErrorIs(t, err, qerrors.ErrAuthenticationFailure)
		require.NotErrorIs(t, err, qerrors.ErrLockedOut)
	}
	require.NoError(t, m.Login(RoleUser, userCredential))
}

func TestUnlock(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	for i := 0; i < 3; i++ {
		_ = m.Login(RoleUser, []byte("wrong"))
	}
	locked, _ := m.lockout.locked(RoleUser)
	require.True(t, locked)

	assert.ErrorIs(t, m.Unlock(RoleUser), qerrors.ErrAuthenticationFailure, "requires crypto officer")

	require.NoError(t, m.Login(RoleCryptoOfficer, officerCredential))
	require.NoError(t, m.Unlock(RoleUser))
	assert.Equal(t, 1, m.countEvents(audit.EventUnlocked))

	require.NoError(t, m.Login(RoleUser, userCredential))
}

func TestLogoutWithoutSession(t *testing.T) {
	m := newTestModule(t, testConfig(false))
	m.Logout()
	assert.Zero(t, m.countEvents(audit.EventLogout))
}
