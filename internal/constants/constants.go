// Package constants defines algorithm sizes and the fixed self-test inputs of
// the quantum-go-fips cryptographic module.
//
// Security Level: ML-KEM-1024 is NIST Category 5, ML-DSA-65 is NIST Category 3.
package constants

// Module identification
const (
	// ModuleName is reported in logs, audit events and the status endpoint
	ModuleName = "quantum-go-fips"

	// MetricsNamespace prefixes every exported Prometheus metric
	MetricsNamespace = "fips_module"
)

// ML-KEM-1024 Parameters (NIST FIPS 203)
const (
	// MLKEMPublicKeySize is the size of ML-KEM-1024 encapsulation key in bytes
	MLKEMPublicKeySize = 1568

	// MLKEMPrivateKeySize is the size of ML-KEM-1024 decapsulation key in bytes
	MLKEMPrivateKeySize = 3168

	// MLKEMCiphertextSize is the size of ML-KEM-1024 ciphertext in bytes
	MLKEMCiphertextSize = 1568

	// MLKEMSharedSecretSize is the size of the shared secret from ML-KEM in bytes
	MLKEMSharedSecretSize = 32

	// MLKEMKeySeedSize is the size of the (d || z) key generation seed
	MLKEMKeySeedSize = 64

	// MLKEMEncapsulationSeedSize is the size of the encapsulation randomness m
	MLKEMEncapsulationSeedSize = 32
)

// ML-DSA-65 Parameters (NIST FIPS 204)
const (
	// MLDSAPublicKeySize is the size of an ML-DSA-65 verifying key in bytes
	MLDSAPublicKeySize = 1952

	// MLDSAPrivateKeySize is the size of an ML-DSA-65 signing key in bytes
	MLDSAPrivateKeySize = 4032

	// MLDSASignatureSize is the size of an ML-DSA-65 signature in bytes
	MLDSASignatureSize = 3309

	// MLDSASeedSize is the size of the key generation seed xi
	MLDSASeedSize = 32

	// MLDSAMaxContextSize is the largest context string FIPS 204 accepts
	MLDSAMaxContextSize = 255
)

// Pre-operational self-test inputs.
// The orchestrator derives its qualifying key pairs from these fixed seeds.
const (
	// POSTSeedByte fills the internal key generation seeds used at POST
	POSTSeedByte = 0x42

	// KEMPCTRandomnessByte fills the encapsulation randomness of the KEM PCT
	KEMPCTRandomnessByte = 0x55

	// SignaturePCTMessage is signed and verified by the signature PCT
	SignaturePCTMessage = "FIPS 140-3 PCT"
)

// Known-answer test inputs
const (
	// KEMKATSeedByte fills the 64-byte KEM KAT key generation seed
	KEMKATSeedByte = 0xAA

	// KEMKATRandomnessByte fills the 32-byte KEM KAT encapsulation randomness
	KEMKATRandomnessByte = 0xBB

	// SignatureKATSeedByte fills the 32-byte signature KAT key generation seed
	SignatureKATSeedByte = 0xCC

	// SignatureKATMessage is the message signed by the signature KAT
	SignatureKATMessage = "FIPS 140-3 KAT"
)

// FIPSContext is the ML-DSA context string used for approved-mode signatures
// (empty for pure ML-DSA).
var FIPSContext = []byte{}

// Software integrity test parameters
const (
	// IntegrityKey keys the HMAC-SHA-256 computed over the code region
	IntegrityKey = "FIPS_140_3_INTEGRITY_KEY"

	// IntegrityDigestSize is the size of the integrity checksum in bytes
	IntegrityDigestSize = 32

	// IntegrityPlaceholder marks an unprovisioned expected checksum. It has
	// the length of a hex-encoded digest so that provisioning the checksum
	// at link time leaves the data layout unchanged.
	IntegrityPlaceholder = "__PQC_FIPS_HMAC_PLACEHOLDER_____________________________________"
)

// Operator authentication defaults.
// These are illustrative credentials only; deployments configure a hashed
// credential store instead.
const (
	// DefaultUserCredential is the illustrative User role secret
	DefaultUserCredential = "user123"

	// DefaultCryptoOfficerCredential is the illustrative Crypto Officer secret
	DefaultCryptoOfficerCredential = "admin456"

	// DefaultMaxLoginAttempts is the consecutive failures before a role locks
	DefaultMaxLoginAttempts = 3

	// DefaultLockoutSeconds is how long a locked role stays locked
	DefaultLockoutSeconds = 15 * 60
)

// Fill returns a slice of n bytes all set to b.
func Fill(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
