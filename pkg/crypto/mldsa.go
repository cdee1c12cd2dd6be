// mldsa.go adapts ML-DSA-65 (NIST FIPS 204) from circl to the Signer contract.
//
// Only the pure (non-prehash) variant is exposed. Signing is hedged when
// randomized is true and deterministic otherwise.
package crypto

import (
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// MLDSA65 implements Signer with ML-DSA-65.
type MLDSA65 struct{}

var _ Signer = MLDSA65{}

// Name returns "ML-DSA-65".
func (MLDSA65) Name() string { return "ML-DSA-65" }

// GenerateKeyPair derives an ML-DSA-65 key pair from the 32-byte seed xi.
// A nil seed is replaced with fresh randomness.
func (MLDSA65) GenerateKeyPair(seed []byte) (VerifyingKey, SigningKey, error) {
	seed, owned, err := seedOrRandom(seed, constants.MLDSASeedSize)
	if err != nil {
		return nil, nil, qerrors.NewCryptoError("MLDSA65.GenerateKeyPair", err)
	}
	if owned {
		defer Zeroize(seed)
	}
	if len(seed) != constants.MLDSASeedSize {
		return nil, nil, qerrors.NewCryptoError("MLDSA65.GenerateKeyPair", qerrors.ErrInvalidSeed)
	}

	var xi [mldsa65.SeedSize]byte
	copy(xi[:], seed)
	defer Zeroize(xi[:])

	pk, sk := mldsa65.NewKeyFromSeed(&xi)
	return VerifyingKey(pk.Bytes()), SigningKey(sk.Bytes()), nil
}

// Sign signs msg under ctx with sk.
func (MLDSA65) Sign(sk SigningKey, msg, ctx []byte, randomized bool) (Signature, error) {
	if len(sk) != constants.MLDSAPrivateKeySize {
		return nil, qerrors.NewCryptoError("MLDSA65.Sign", qerrors.ErrInvalidKeySize)
	}
	if len(ctx) > constants.MLDSAMaxContextSize {
		return nil, qerrors.NewCryptoError("MLDSA65.Sign", qerrors.ErrContextTooLong)
	}

	var key mldsa65.PrivateKey
	if err := key.UnmarshalBinary(sk); err != nil {
		return nil, qerrors.NewCryptoError("MLDSA65.Sign", err)
	}

	sig := make(Signature, constants.MLDSASignatureSize)
	if err := mldsa65.SignTo(&key, msg, ctx, randomized, sig); err != nil {
		return nil, qerrors.NewCryptoError("MLDSA65.Sign", err)
	}
	return sig, nil
}

// Verify checks sig over msg and ctx against vk.
func (MLDSA65) Verify(vk VerifyingKey, msg, ctx []byte, sig Signature) error {
	if len(vk) != constants.MLDSAPublicKeySize {
		return qerrors.NewCryptoError("MLDSA65.Verify", qerrors.ErrInvalidKeySize)
	}
	if len(ctx) > constants.MLDSAMaxContextSize {
		return qerrors.NewCryptoError("MLDSA65.Verify", qerrors.ErrContextTooLong)
	}
	if len(sig) != constants.MLDSASignatureSize {
		return qerrors.NewCryptoError("MLDSA65.Verify", qerrors.ErrInvalidSignature)
	}

	var key mldsa65.PublicKey
	if err := key.UnmarshalBinary(vk); err != nil {
		return qerrors.NewCryptoError("MLDSA65.Verify", err)
	}

	if !mldsa65.Verify(&key, msg, ctx, sig) {
		return qerrors.NewCryptoError("MLDSA65.Verify", qerrors.ErrInvalidSignature)
	}
	return nil
}
