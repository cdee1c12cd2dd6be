// Package errors defines the error taxonomy of the quantum-go-fips module.
// Every self-test phase, the state machine, the authentication gate and the
// CSP guard report one of the sentinels below, possibly wrapped with context.
// Error messages never carry key material.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for self-tests
var (
	// ErrCASTFailure indicates a hash conditional algorithm self-test failed
	ErrCASTFailure = errors.New("fips: conditional algorithm self-test failed")

	// ErrKATFailure indicates a known-answer test produced an unexpected output
	ErrKATFailure = errors.New("fips: known-answer test failed")

	// ErrPCTFailure indicates a pairwise consistency test failed
	ErrPCTFailure = errors.New("fips: pairwise consistency test failed")

	// ErrIntegrityCheckFailure indicates the software integrity checksum did not match
	ErrIntegrityCheckFailure = errors.New("fips: software integrity check failed")

	// ErrPlatform indicates the code region could not be located on this platform
	ErrPlatform = errors.New("fips: platform does not support integrity verification")
)

// Sentinel errors for module state
var (
	// ErrNotInitialized indicates the power-on self-test has not been run
	ErrNotInitialized = errors.New("fips: module not initialized")

	// ErrPOSTInProgress indicates the power-on self-test is currently running
	ErrPOSTInProgress = errors.New("fips: self-test in progress")

	// ErrErrorState indicates the module is in the error state
	ErrErrorState = errors.New("fips: module in error state")
)

// Sentinel errors for operator access
var (
	// ErrAuthenticationFailure indicates a bad credential or a missing role
	ErrAuthenticationFailure = errors.New("fips: authentication failure")

	// ErrLockedOut indicates a role is locked after repeated login failures
	ErrLockedOut = errors.New("fips: role locked after repeated failures")

	// ErrCSPExportBlocked indicates plaintext export of a CSP was refused
	ErrCSPExportBlocked = errors.New("fips: CSP export blocked in approved mode")
)

// Sentinel errors for cryptographic operations
var (
	// ErrInvalidKeySize indicates that a key has an incorrect size
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidCiphertext indicates that a ciphertext has an incorrect size
	ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext")

	// ErrInvalidSeed indicates that a key generation or encapsulation seed has an incorrect size
	ErrInvalidSeed = errors.New("crypto: invalid seed size")

	// ErrInvalidSignature indicates that a signature failed verification or is malformed
	ErrInvalidSignature = errors.New("crypto: invalid signature")

	// ErrContextTooLong indicates an ML-DSA context string longer than 255 bytes
	ErrContextTooLong = errors.New("crypto: context string too long")

	// ErrAlgorithmDisabled indicates the algorithm family is not enabled in this module
	ErrAlgorithmDisabled = errors.New("fips: algorithm family disabled")
)

// CryptoError wraps a cryptographic error with additional context
type CryptoError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// SelfTestError attributes a failure to the self-test that produced it.
// Err is always one of the self-test sentinels so callers can classify the
// failure with errors.Is without parsing Test or Name.
type SelfTestError struct {
	Test   string // Test class: hash-cast, kat, pct, integrity
	Name   string // Individual check, e.g. "SHA3-256" or "ML-KEM-1024"
	Err    error  // Self-test sentinel
	Detail string // Optional diagnostic, never key material
}

func (e *SelfTestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %v: %s", e.Test, e.Name, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s %s: %v", e.Test, e.Name, e.Err)
}

func (e *SelfTestError) Unwrap() error {
	return e.Err
}

// NewSelfTestError creates a new SelfTestError
func NewSelfTestError(test, name string, err error, detail string) *SelfTestError {
	return &SelfTestError{Test: test, Name: name, Err: err, Detail: detail}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsSelfTestFailure reports whether err is any self-test failure class.
func IsSelfTestFailure(err error) bool {
	return errors.Is(err, ErrCASTFailure) ||
		errors.Is(err, ErrKATFailure) ||
		errors.Is(err, ErrPCTFailure) ||
		errors.Is(err, ErrIntegrityCheckFailure) ||
		errors.Is(err, ErrPlatform)
}

// IsStateError reports whether err is raised because the module is not operational.
func IsStateError(err error) bool {
	return errors.Is(err, ErrNotInitialized) ||
		errors.Is(err, ErrPOSTInProgress) ||
		errors.Is(err, ErrErrorState)
}
