package crypto

// KEMPublicKey is an encoded ML-KEM-1024 encapsulation key.
type KEMPublicKey []byte

// KEMPrivateKey is an encoded ML-KEM-1024 decapsulation key. It is a CSP.
type KEMPrivateKey []byte

// KEMCiphertext is an ML-KEM-1024 ciphertext.
type KEMCiphertext []byte

// SharedSecret is the 32-byte output of encapsulation. It is a CSP.
type SharedSecret []byte

// VerifyingKey is an encoded ML-DSA-65 public key.
type VerifyingKey []byte

// SigningKey is an encoded ML-DSA-65 private key. It is a CSP.
type SigningKey []byte

// Signature is an ML-DSA-65 signature.
type Signature []byte

// Zeroize erases the key.
func (k KEMPrivateKey) Zeroize() { Zeroize(k) }

// Zeroize erases the secret.
func (s SharedSecret) Zeroize() { Zeroize(s) }

// Zeroize erases the key.
func (k SigningKey) Zeroize() { Zeroize(k) }

// KEM is the key-encapsulation contract the module relies on.
//
// A nil seed or randomness argument asks the implementation for fresh
// randomness. A non-nil argument must have the exact size of the scheme and
// makes the operation deterministic, which the self-tests depend on.
type KEM interface {
	// Name returns the algorithm name, e.g. "ML-KEM-1024".
	Name() string

	// GenerateKeyPair derives a key pair from a 64-byte seed.
	GenerateKeyPair(seed []byte) (KEMPublicKey, KEMPrivateKey, error)

	// Encapsulate produces a ciphertext and shared secret for pk from
	// 32 bytes of randomness.
	Encapsulate(pk KEMPublicKey, randomness []byte) (KEMCiphertext, SharedSecret, error)

	// Decapsulate recovers the shared secret from ct.
	Decapsulate(sk KEMPrivateKey, ct KEMCiphertext) (SharedSecret, error)
}

// Signer is the digital-signature contract the module relies on.
type Signer interface {
	// Name returns the algorithm name, e.g. "ML-DSA-65".
	Name() string

	// GenerateKeyPair derives a key pair from a 32-byte seed.
	GenerateKeyPair(seed []byte) (VerifyingKey, SigningKey, error)

	// Sign signs msg under the context string ctx. When randomized is false
	// the deterministic variant is used and the output depends only on the
	// key, the message and the context.
	Sign(sk SigningKey, msg, ctx []byte, randomized bool) (Signature, error)

	// Verify returns nil only when sig is a valid signature over msg and ctx.
	Verify(vk VerifyingKey, msg, ctx []byte, sig Signature) error
}
