// Package selftest implements the self-tests that gate the cryptographic
// module: hash conditional algorithm self-tests (CASTs), known-answer tests
// (KATs) of the full key-encapsulation and signature pipelines, and the
// pairwise consistency tests (PCTs) run on every generated key pair.
//
// IMPORTANT: this is production code, not test code. The power-on self-test
// runs these checks in the deployed binary before any operation is allowed.
//
// Every failure is a *errors.SelfTestError whose sentinel identifies the
// test class, so a KAT failure is never reported as a CAST failure.
package selftest

import (
	"time"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// TestID identifies a class of self-test.
type TestID string

const (
	// TestHashCAST is a fixed-input check of a hash primitive.
	TestHashCAST TestID = "hash-cast"
	// TestKAT is a fixed-seed check of a full algorithm pipeline.
	TestKAT TestID = "kat"
	// TestPCT is a pairwise consistency test of a freshly generated key pair.
	TestPCT TestID = "pct"
	// TestIntegrity is the software integrity check.
	TestIntegrity TestID = "integrity"
)

// Sentinel returns the error sentinel associated with the test class.
func (t TestID) Sentinel() error {
	switch t {
	case TestHashCAST:
		return qerrors.ErrCASTFailure
	case TestKAT:
		return qerrors.ErrKATFailure
	case TestPCT:
		return qerrors.ErrPCTFailure
	case TestIntegrity:
		return qerrors.ErrIntegrityCheckFailure
	default:
		return nil
	}
}

// Result is the outcome of a single self-test.
type Result struct {
	Test     TestID        `json:"test"`
	Name     string        `json:"name"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Passed reports whether the test succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Outcome is "pass" or "fail", used as a metric label.
func (r Result) Outcome() string {
	if r.Err == nil {
		return "pass"
	}
	return "fail"
}

// Measure runs fn and records its outcome and wall time.
func Measure(test TestID, name string, fn func() error) Result {
	start := time.Now()
	err := fn()
	return Result{Test: test, Name: name, Err: err, Duration: time.Since(start)}
}

// Fail builds the error of a failed check of the given class. detail must
// not contain key material.
func Fail(test TestID, name, detail string) error {
	return qerrors.NewSelfTestError(string(test), name, test.Sentinel(), detail)
}

// failErr attributes an error from a primitive to the given test.
func failErr(test TestID, name, what string, err error) error {
	return Fail(test, name, what+": "+err.Error())
}
