// mlkem.go adapts ML-KEM-1024 (NIST FIPS 203) from circl to the KEM contract.
//
// Security Level: NIST Category 5.
package crypto

import (
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// MLKEM1024 implements KEM with ML-KEM-1024.
type MLKEM1024 struct{}

var _ KEM = MLKEM1024{}

// Name returns "ML-KEM-1024".
func (MLKEM1024) Name() string { return "ML-KEM-1024" }

// GenerateKeyPair derives an ML-KEM-1024 key pair from the 64-byte seed
// (d || z). The same seed always yields the same key pair. A nil seed is
// replaced with fresh randomness.
func (MLKEM1024) GenerateKeyPair(seed []byte) (KEMPublicKey, KEMPrivateKey, error) {
	seed, owned, err := seedOrRandom(seed, constants.MLKEMKeySeedSize)
	if err != nil {
		return nil, nil, qerrors.NewCryptoError("MLKEM1024.GenerateKeyPair", err)
	}
	if owned {
		defer Zeroize(seed)
	}
	if len(seed) != constants.MLKEMKeySeedSize {
		return nil, nil, qerrors.NewCryptoError("MLKEM1024.GenerateKeyPair", qerrors.ErrInvalidSeed)
	}

	pk, sk := mlkem1024.NewKeyFromSeed(seed)

	pub := make(KEMPublicKey, constants.MLKEMPublicKeySize)
	priv := make(KEMPrivateKey, constants.MLKEMPrivateKeySize)
	pk.Pack(pub)
	sk.Pack(priv)

	return pub, priv, nil
}

// Encapsulate encapsulates a fresh shared secret to pk.
//
// With 32 bytes of randomness the result is deterministic. A nil
// randomness argument draws the coins from the CSPRNG.
func (MLKEM1024) Encapsulate(pk KEMPublicKey, randomness []byte) (KEMCiphertext, SharedSecret, error) {
	if len(pk) != constants.MLKEMPublicKeySize {
		return nil, nil, qerrors.NewCryptoError("MLKEM1024.Encapsulate", qerrors.ErrInvalidKeySize)
	}

	randomness, owned, err := seedOrRandom(randomness, constants.MLKEMEncapsulationSeedSize)
	if err != nil {
		return nil, nil, qerrors.NewCryptoError("MLKEM1024.Encapsulate", err)
	}
	if owned {
		defer Zeroize(randomness)
	}
	if len(randomness) != constants.MLKEMEncapsulationSeedSize {
		return nil, nil, qerrors.NewCryptoError("MLKEM1024.Encapsulate", qerrors.ErrInvalidSeed)
	}

	var key mlkem1024.PublicKey
	if err := key.Unpack(pk); err != nil {
		return nil, nil, qerrors.NewCryptoError("MLKEM1024.Encapsulate", err)
	}

	ct := make(KEMCiphertext, constants.MLKEMCiphertextSize)
	ss := make(SharedSecret, constants.MLKEMSharedSecretSize)
	key.EncapsulateTo(ct, ss, randomness)

	return ct, ss, nil
}

// Decapsulate recovers the shared secret from ct.
//
// A well-formed but invalid ciphertext does not fail: FIPS 203 implicit
// rejection returns a pseudorandom secret instead.
func (MLKEM1024) Decapsulate(sk KEMPrivateKey, ct KEMCiphertext) (SharedSecret, error) {
	if len(sk) != constants.MLKEMPrivateKeySize {
		return nil, qerrors.NewCryptoError("MLKEM1024.Decapsulate", qerrors.ErrInvalidKeySize)
	}
	if len(ct) != constants.MLKEMCiphertextSize {
		return nil, qerrors.NewCryptoError("MLKEM1024.Decapsulate", qerrors.ErrInvalidCiphertext)
	}

	var key mlkem1024.PrivateKey
	if err := key.Unpack(sk); err != nil {
		return nil, qerrors.NewCryptoError("MLKEM1024.Decapsulate", err)
	}

	ss := make(SharedSecret, constants.MLKEMSharedSecretSize)
	key.DecapsulateTo(ss, ct)

	return ss, nil
}
