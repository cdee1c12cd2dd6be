package selftest

import (
	"github.com/pzverkov/quantum-go-fips/internal/constants"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
)

// KEMPCT verifies that pk and sk correspond: a secret encapsulated to pk must
// be recovered bit for bit by sk, and must not be all zeros.
func KEMPCT(kem crypto.KEM, pk crypto.KEMPublicKey, sk crypto.KEMPrivateKey) error {
	name := kem.Name()

	rnd := constants.Fill(constants.KEMPCTRandomnessByte, constants.MLKEMEncapsulationSeedSize)
	ct, ss, err := kem.Encapsulate(pk, rnd)
	if err != nil {
		return failErr(TestPCT, name, "encapsulation", err)
	}
	defer ss.Zeroize()

	recovered, err := kem.Decapsulate(sk, ct)
	if err != nil {
		return failErr(TestPCT, name, "decapsulation", err)
	}
	defer recovered.Zeroize()

	if !crypto.ConstantTimeCompare(ss, recovered) {
		return Fail(TestPCT, name, "shared secrets do not match")
	}
	if crypto.IsZero(ss) {
		return Fail(TestPCT, name, "shared secret is all zeros")
	}
	return nil
}

// SignaturePCT verifies that vk and sk correspond by signing a fixed message
// with sk and verifying it with vk.
func SignaturePCT(signer crypto.Signer, vk crypto.VerifyingKey, sk crypto.SigningKey) error {
	name := signer.Name()
	msg := []byte(constants.SignaturePCTMessage)

	sig, err := signer.Sign(sk, msg, constants.FIPSContext, false)
	if err != nil {
		return failErr(TestPCT, name, "signing", err)
	}
	if err := signer.Verify(vk, msg, constants.FIPSContext, sig); err != nil {
		return failErr(TestPCT, name, "verification", err)
	}
	return nil
}
