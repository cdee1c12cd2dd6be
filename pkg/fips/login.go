package fips

import (
	"fmt"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
)

var errLocked = fmt.Errorf("%w: %w", qerrors.ErrAuthenticationFailure, qerrors.ErrLockedOut)

// Login authenticates role with credential. On success the session becomes
// role; on failure the session is left unchanged and
// errors.ErrAuthenticationFailure is returned. Repeated failures lock the
// role; the error then also matches errors.ErrLockedOut.
func (m *Module) Login(role Role, credential []byte) error {
	log := m.logger.Named("auth")
	fields := metrics.Fields{"role": role.String()}

	if role != RoleUser && role != RoleCryptoOfficer {
		m.collector.RecordLogin(role.String(), "failure")
		log.Warn("login failed: unknown role", fields)
		_ = m.record(audit.NewEvent(audit.EventLoginFail, audit.ResultFailure, m.now()).
			WithContext(audit.Context{Role: role.String(), Reason: "unknown role"}))
		return qerrors.ErrAuthenticationFailure
	}

	if locked, remaining := m.lockout.locked(role); locked {
		m.collector.RecordLogin(role.String(), "locked")
		fields["remaining"] = remaining.String()
		log.Warn("login refused: role locked", fields)
		_ = m.record(audit.NewEvent(audit.EventLoginFail, audit.ResultFailure, m.now()).
			WithContext(audit.Context{Role: role.String(), Reason: "locked"}))
		return errLocked
	}

	if !m.creds.Verify(role, credential) {
		lockedNow := m.lockout.failure(role)
		m.collector.RecordLogin(role.String(), "failure")
		fields["attempts"] = m.lockout.attempts(role)
		log.Warn("login failed", fields)
		_ = m.record(audit.NewEvent(audit.EventLoginFail, audit.ResultFailure, m.now()).
			WithContext(audit.Context{Role: role.String(), Reason: "bad credential"}))
		if lockedNow {
			log.Warn("role locked after repeated failures", metrics.Fields{
				"role":     role.String(),
				"duration": m.cfg.Lockout.Duration.String(),
			})
			_ = m.record(audit.NewEvent(audit.EventLockedOut, audit.ResultFailure, m.now()).
				WithContext(audit.Context{Role: role.String()}))
			return errLocked
		}
		return qerrors.ErrAuthenticationFailure
	}

	m.lockout.success(role)
	m.session.set(role)
	m.collector.RecordLogin(role.String(), "success")
	log.Info("login", fields)
	_ = m.record(audit.NewEvent(audit.EventLogin, audit.ResultSuccess, m.now()).
		WithActor(operatorActor(role)).
		WithContext(audit.Context{Role: role.String()}))
	return nil
}

// Logout clears the session.
func (m *Module) Logout() {
	prev := m.session.clear()
	if prev == RoleNone {
		return
	}
	m.logger.Named("auth").Info("logout", metrics.Fields{"role": prev.String()})
	_ = m.record(audit.NewEvent(audit.EventLogout, audit.ResultSuccess, m.now()).
		WithActor(operatorActor(prev)).
		WithContext(audit.Context{Role: prev.String()}))
}

// CheckAuthority succeeds only if the active role is exactly required.
func (m *Module) CheckAuthority(required Role) error {
	return m.session.CheckAuthority(required)
}

// IsAuthenticated reports whether an operator is logged in.
func (m *Module) IsAuthenticated() bool {
	return m.session.IsAuthenticated()
}

// Role returns the active operator role.
func (m *Module) Role() Role {
	return m.session.Role()
}

// Unlock releases the lockout of role. It requires a Crypto Officer session.
func (m *Module) Unlock(role Role) error {
	if err := m.session.CheckAuthority(RoleCryptoOfficer); err != nil {
		return err
	}
	if !m.lockout.release(role) {
		return nil
	}
	m.logger.Named("auth").Info("lockout released", metrics.Fields{"role": role.String()})
	_ = m.record(audit.NewEvent(audit.EventUnlocked, audit.ResultSuccess, m.now()).
		WithActor(operatorActor(RoleCryptoOfficer)).
		WithContext(audit.Context{Role: role.String()}))
	return nil
}
