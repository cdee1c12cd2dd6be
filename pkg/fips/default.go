package fips

import (
	"context"
	"sync"

	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
)

var (
	defaultOnce   sync.Once
	defaultModule *Module
)

// Default returns the process-wide module, created on first use from
// DefaultConfig.
func Default() *Module {
	defaultOnce.Do(func() {
		m, err := New(DefaultConfig())
		if err != nil {
			panic("fips: default module: " + err.Error())
		}
		defaultModule = m
	})
	return defaultModule
}

// RunPOST runs the power-on self-test of the default module.
func RunPOST(ctx context.Context) error { return Default().RunPOST(ctx) }

// RunPOSTOrPanic runs the power-on self-test of the default module and
// panics on failure.
func RunPOSTOrPanic() { Default().RunPOSTOrPanic() }

// Query returns the state of the default module.
func Query() State { return Default().Query() }

// Require returns nil only if the default module is operational.
func Require() error { return Default().state.Require() }

// IsOperational reports whether the default module is operational.
func IsOperational() bool { return Default().IsOperational() }

// Login authenticates an operator of the default module.
func Login(role Role, credential []byte) error { return Default().Login(role, credential) }

// Logout clears the session of the default module.
func Logout() { Default().Logout() }

// CheckAuthority checks the session role of the default module.
func CheckAuthority(required Role) error { return Default().CheckAuthority(required) }

// ExportBlocked reports whether the default module refuses CSP export.
func ExportBlocked() error { return Default().ExportBlocked() }

// GenerateKEMKeyPair generates an ML-KEM-1024 key pair on the default module.
func GenerateKEMKeyPair(seed []byte) (crypto.KEMPublicKey, crypto.KEMPrivateKey, error) {
	return Default().GenerateKEMKeyPair(seed)
}

// Encapsulate encapsulates to pk on the default module.
func Encapsulate(pk crypto.KEMPublicKey, randomness []byte) (crypto.KEMCiphertext, crypto.SharedSecret, error) {
	return Default().Encapsulate(pk, randomness)
}

// Decapsulate recovers the shared secret of ct on the default module.
func Decapsulate(sk crypto.KEMPrivateKey, ct crypto.KEMCiphertext) (crypto.SharedSecret, error) {
	return Default().Decapsulate(sk, ct)
}

// GenerateSigningKeyPair generates an ML-DSA-65 key pair on the default module.
func GenerateSigningKeyPair(seed []byte) (crypto.VerifyingKey, crypto.SigningKey, error) {
	return Default().GenerateSigningKeyPair(seed)
}

// Sign signs msg on the default module.
func Sign(sk crypto.SigningKey, msg, context []byte, randomized bool) (crypto.Signature, error) {
	return Default().Sign(sk, msg, context, randomized)
}

// Verify verifies sig on the default module.
func Verify(vk crypto.VerifyingKey, msg, context []byte, sig crypto.Signature) error {
	return Default().Verify(vk, msg, context, sig)
}
