package fips

import (
	"sync/atomic"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// State is the lifecycle state of a module.
type State uint32

const (
	// StateUninitialized is the initial state: POST has not run.
	StateUninitialized State = iota
	// StateSelfTest means a POST is running.
	StateSelfTest
	// StateOperational means the last POST passed.
	StateOperational
	// StateError means a self-test failed. Only a new POST leaves it.
	StateError
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateSelfTest:      "self_test",
	StateOperational:   "operational",
	StateError:         "error",
}

// allStateNames lists every state label, in declaration order.
var allStateNames = stateNames[:]

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateRegistry holds the state of one module. The zero value is
// Uninitialized and ready for use.
//
// Only the POST orchestrator moves the registry to Operational, and only
// from SelfTest.
type StateRegistry struct {
	v      atomic.Uint32
	notify func(from, to State)
}

// Query returns the current state. It never blocks.
func (r *StateRegistry) Query() State {
	return State(r.v.Load())
}

// IsOperational reports whether the module may perform operations.
func (r *StateRegistry) IsOperational() bool {
	return r.Query() == StateOperational
}

// Require returns nil only in the Operational state. Every other state maps
// to its own error so callers can tell "not yet ready" from "failed".
func (r *StateRegistry) Require() error {
	switch r.Query() {
	case StateOperational:
		return nil
	case StateSelfTest:
		return qerrors.ErrPOSTInProgress
	case StateError:
		return qerrors.ErrErrorState
	default:
		return qerrors.ErrNotInitialized
	}
}

// Reset returns the registry to Uninitialized. A new POST is required
// before the module is usable again.
func (r *StateRegistry) Reset() {
	r.transition(StateUninitialized)
}

func (r *StateRegistry) enterSelfTest() {
	r.transition(StateSelfTest)
}

// enterOperational succeeds only if the registry is still in SelfTest.
func (r *StateRegistry) enterOperational() bool {
	if !r.v.CompareAndSwap(uint32(StateSelfTest), uint32(StateOperational)) {
		return false
	}
	if r.notify != nil {
		r.notify(StateSelfTest, StateOperational)
	}
	return true
}

func (r *StateRegistry) enterError() {
	r.transition(StateError)
}

func (r *StateRegistry) transition(to State) {
	from := State(r.v.Swap(uint32(to)))
	if from != to && r.notify != nil {
		r.notify(from, to)
	}
}
