package selftest

import (
	"github.com/pzverkov/quantum-go-fips/internal/constants"
)

// Golden values for the known-answer tests. Large artifacts are pinned by
// their SHA3-256 digest; the shared secret is pinned in full.
const (
	// ML-KEM-1024, seed 0xAA^64, encapsulation randomness 0xBB^32.
	kemKATPublicKeyDigest  = "72c7d69d84535cfd1ec3a03cfdfc018315a6c1c176676475383d0e096c856e63"
	kemKATPrivateKeyDigest = "705b593376c6c65167ddfff2f0cd000aee6e16434876ecc6ece928e516751f6f"
	kemKATCiphertextDigest = "d8f31ade398b6954f695a096054d72777791edd7df03943d75947556c0d3fe2e"
	kemKATSharedSecret     = "dc45e0e41c728ff8d4f39c7959dab5a8a289ba9d81c41aabd635d225e09be617"

	// ML-DSA-65, seed 0xCC^32, message "FIPS 140-3 KAT", empty context,
	// deterministic signing.
	sigKATVerifyingKeyDigest = "affa187cffbcd83fd4545bd459ef8531600f3612ae59569a06a9f72be07fe739"
	sigKATSigningKeyDigest   = "5a274a5ee20485d419be4ff5e114227c6058359106c55229c8cea857d3e7b3a5"
	sigKATSignatureDigest    = "2cdc0b97b4a5c81e3445563a6efc0913566bb97758d11ff3918c51c84c3cf428"
)

// KEMVector is a known-answer vector for a key-encapsulation mechanism.
type KEMVector struct {
	Seed             []byte
	Randomness       []byte
	PublicKeyDigest  []byte
	PrivateKeyDigest []byte
	CiphertextDigest []byte
	SharedSecret     []byte
}

// SignatureVector is a known-answer vector for a signature scheme.
type SignatureVector struct {
	Seed               []byte
	Message            []byte
	Context            []byte
	VerifyingKeyDigest []byte
	SigningKeyDigest   []byte
	SignatureDigest    []byte
}

// DefaultKEMVector returns the embedded ML-KEM-1024 vector.
func DefaultKEMVector() KEMVector {
	return KEMVector{
		Seed:             constants.Fill(constants.KEMKATSeedByte, constants.MLKEMKeySeedSize),
		Randomness:       constants.Fill(constants.KEMKATRandomnessByte, constants.MLKEMEncapsulationSeedSize),
		PublicKeyDigest:  mustHex(kemKATPublicKeyDigest),
		PrivateKeyDigest: mustHex(kemKATPrivateKeyDigest),
		CiphertextDigest: mustHex(kemKATCiphertextDigest),
		SharedSecret:     mustHex(kemKATSharedSecret),
	}
}

// DefaultSignatureVector returns the embedded ML-DSA-65 vector.
func DefaultSignatureVector() SignatureVector {
	return SignatureVector{
		Seed:               constants.Fill(constants.SignatureKATSeedByte, constants.MLDSASeedSize),
		Message:            []byte(constants.SignatureKATMessage),
		Context:            constants.FIPSContext,
		VerifyingKeyDigest: mustHex(sigKATVerifyingKeyDigest),
		SigningKeyDigest:   mustHex(sigKATSigningKeyDigest),
		SignatureDigest:    mustHex(sigKATSignatureDigest),
	}
}
