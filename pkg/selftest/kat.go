package selftest

import (
	"bytes"

	"golang.org/x/crypto/sha3"

	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
)

func digest(b []byte) []byte {
	d := sha3.Sum256(b)
	return d[:]
}

// KEMKAT runs the known-answer test of a key-encapsulation mechanism:
// derive the key pair from v.Seed, encapsulate with v.Randomness, decapsulate,
// and compare every artifact with the vector. All secrets are zeroized
// before returning.
func KEMKAT(kem crypto.KEM, v KEMVector) error {
	name := kem.Name()

	pk, sk, err := kem.GenerateKeyPair(v.Seed)
	if err != nil {
		return failErr(TestKAT, name, "key generation", err)
	}
	defer sk.Zeroize()

	if !bytes.Equal(digest(pk), v.PublicKeyDigest) {
		return Fail(TestKAT, name, "public key mismatch")
	}
	if !bytes.Equal(digest(sk), v.PrivateKeyDigest) {
		return Fail(TestKAT, name, "private key mismatch")
	}

	ct, ss, err := kem.Encapsulate(pk, v.Randomness)
	if err != nil {
		return failErr(TestKAT, name, "encapsulation", err)
	}
	defer ss.Zeroize()

	if !bytes.Equal(digest(ct), v.CiphertextDigest) {
		return Fail(TestKAT, name, "ciphertext mismatch")
	}
	if !crypto.ConstantTimeCompare(ss, v.SharedSecret) {
		return Fail(TestKAT, name, "encapsulated secret mismatch")
	}

	recovered, err := kem.Decapsulate(sk, ct)
	if err != nil {
		return failErr(TestKAT, name, "decapsulation", err)
	}
	defer recovered.Zeroize()

	if !crypto.ConstantTimeCompare(recovered, v.SharedSecret) {
		return Fail(TestKAT, name, "decapsulated secret mismatch")
	}
	return nil
}

// SignatureKAT runs the known-answer test of a signature scheme: derive the
// key pair from v.Seed, sign v.Message deterministically under v.Context,
// compare every artifact with the vector, then verify the signature.
func SignatureKAT(signer crypto.Signer, v SignatureVector) error {
	name := signer.Name()

	vk, sk, err := signer.GenerateKeyPair(v.Seed)
	if err != nil {
		return failErr(TestKAT, name, "key generation", err)
	}
	defer sk.Zeroize()

	if !bytes.Equal(digest(vk), v.VerifyingKeyDigest) {
		return Fail(TestKAT, name, "verifying key mismatch")
	}
	if !bytes.Equal(digest(sk), v.SigningKeyDigest) {
		return Fail(TestKAT, name, "signing key mismatch")
	}

	sig, err := signer.Sign(sk, v.Message, v.Context, false)
	if err != nil {
		return failErr(TestKAT, name, "signing", err)
	}
	if !bytes.Equal(digest(sig), v.SignatureDigest) {
		return Fail(TestKAT, name, "signature mismatch")
	}

	if err := signer.Verify(vk, v.Message, v.Context, sig); err != nil {
		return failErr(TestKAT, name, "verification", err)
	}
	return nil
}
