package fips

import (
	"sync"
	"time"
)

// LockoutPolicy limits consecutive failed logins per role (NIST 800-53
// AC-7). MaxAttempts of zero disables lockout.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

type attemptRecord struct {
	count       int
	lockedUntil time.Time
}

// lockout tracks failures per role. Locks expire after the policy duration
// or when a Crypto Officer releases them.
type lockout struct {
	mu      sync.Mutex
	policy  LockoutPolicy
	now     func() time.Time
	records map[Role]*attemptRecord
}

func newLockout(policy LockoutPolicy, now func() time.Time) *lockout {
	return &lockout{
		policy:  policy,
		now:     now,
		records: make(map[Role]*attemptRecord),
	}
}

// locked reports whether role is locked and for how much longer.
func (l *lockout) locked(role Role) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lockedLocked(role)
}

func (l *lockout) lockedLocked(role Role) (bool, time.Duration) {
	rec, ok := l.records[role]
	if !ok || rec.lockedUntil.IsZero() {
		return false, 0
	}
	remaining := rec.lockedUntil.Sub(l.now())
	if remaining <= 0 {
		rec.lockedUntil = time.Time{}
		rec.count = 0
		return false, 0
	}
	return true, remaining
}

// failure records a failed attempt and reports whether it locked the role.
func (l *lockout) failure(role Role) bool {
	if l.policy.MaxAttempts <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if locked, _ := l.lockedLocked(role); locked {
		return false
	}
	rec, ok := l.records[role]
	if !ok {
		rec = &attemptRecord{}
		l.records[role] = rec
	}
	rec.count++
	if rec.count < l.policy.MaxAttempts {
		return false
	}
	rec.lockedUntil = l.now().Add(l.policy.Duration)
	return true
}

// success clears the failure count of role.
func (l *lockout) success(role Role) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[role]; ok {
		rec.count = 0
		rec.lockedUntil = time.Time{}
	}
}

// release unlocks role and reports whether it was locked.
func (l *lockout) release(role Role) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	locked, _ := l.lockedLocked(role)
	if rec, ok := l.records[role]; ok {
		rec.count = 0
		rec.lockedUntil = time.Time{}
	}
	return locked
}

// attempts returns the current consecutive failure count of role.
func (l *lockout) attempts(role Role) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[role]; ok {
		return rec.count
	}
	return 0
}
