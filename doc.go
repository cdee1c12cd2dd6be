// Package quantumgofips is a FIPS 140-3 style cryptographic module boundary
// around ML-KEM-1024 (NIST FIPS 203) and ML-DSA-65 (NIST FIPS 204).
//
// The primitives themselves come from CIRCL. This module adds what a
// validated module needs around them: a state machine, power-on self-tests
// (hash CASTs, KATs and pairwise consistency tests), a code integrity check,
// operator roles with login lockout, CSP export control and a hash-chained
// audit trail.
//
// # Quick Start
//
//	import "github.com/pzverkov/quantum-go-fips/pkg/fips"
//
//	fips.RunPOSTOrPanic()
//	if err := fips.Login(fips.RoleUser, credential); err != nil {
//		return err
//	}
//	pk, sk, _ := fips.GenerateKEMKeyPair(nil)
//	ct, ss, _ := fips.Encapsulate(pk, nil)
//	recovered, _ := fips.Decapsulate(sk, ct)
//
// Build with -tags fips to enable compliance mode by default. In compliance
// mode the POST also runs the known answer tests and the integrity check,
// and plaintext export of private keys and shared secrets is refused.
//
// # Package Structure
//
//   - pkg/fips: Module, state machine, roles, POST and the guarded operations
//   - pkg/crypto: ML-KEM-1024 and ML-DSA-65 adapters over CIRCL
//   - pkg/selftest: CASTs, KATs, PCTs and their test vectors
//   - pkg/integrity: HMAC-SHA-256 check over the executable code section
//   - pkg/audit: Hash-chained JSONL audit trail
//   - pkg/metrics: Prometheus, tracing, logging and health endpoints
//   - internal/api: Operator HTTP API served by fips-module serve
//   - cmd/fips-module: CLI (post, serve, digest, audit verify, hash-credential)
//
// # Testing
//
//	go test ./...                                             # All tests
//	go test -tags fips ./...                                  # Compliance build
//	go test -fuzz=FuzzParseHashedCredential ./pkg/fips/      # Fuzz tests
//	go test -run=^$ -bench=. ./pkg/fips/                      # Benchmarks
//
// # References
//
//   - NIST FIPS 140-3: Security Requirements for Cryptographic Modules
//   - NIST FIPS 203: Module-Lattice-Based Key-Encapsulation Mechanism Standard
//   - NIST FIPS 204: Module-Lattice-Based Digital Signature Standard
//   - NIST FIPS 202: SHA-3 Standard
package quantumgofips
