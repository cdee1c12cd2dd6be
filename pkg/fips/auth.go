package fips

import (
	"fmt"
	"strings"
	"sync/atomic"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// Role is an operator role.
type Role uint32

const (
	// RoleNone means no operator is logged in.
	RoleNone Role = iota
	// RoleUser may run cryptographic operations.
	RoleUser
	// RoleCryptoOfficer administers the module: self-test re-runs and
	// lockout release.
	RoleCryptoOfficer
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleUser:
		return "user"
	case RoleCryptoOfficer:
		return "crypto_officer"
	default:
		return fmt.Sprintf("role(%d)", uint32(r))
	}
}

// MarshalText renders the role name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseRole parses "user" or "crypto_officer" (also "crypto-officer", "co").
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "crypto_officer", "crypto-officer", "cryptoofficer", "co":
		return RoleCryptoOfficer, nil
	default:
		return RoleNone, fmt.Errorf("fips: unknown role %q", s)
	}
}

// SessionRegistry holds the operator session of one module. The zero value
// has no operator logged in. Sessions are never persisted.
type SessionRegistry struct {
	v atomic.Uint32
}

// Role returns the active role.
func (s *SessionRegistry) Role() Role {
	return Role(s.v.Load())
}

// IsAuthenticated reports whether any role is active.
func (s *SessionRegistry) IsAuthenticated() bool {
	return s.Role() != RoleNone
}

// CheckAuthority succeeds only if the active role equals required. There is
// no role hierarchy: a Crypto Officer is not a User.
func (s *SessionRegistry) CheckAuthority(required Role) error {
	if required == RoleNone || s.Role() != required {
		return qerrors.ErrAuthenticationFailure
	}
	return nil
}

func (s *SessionRegistry) set(r Role) { s.v.Store(uint32(r)) }

func (s *SessionRegistry) clear() Role { return Role(s.v.Swap(uint32(RoleNone))) }
