// Package cryptotest provides fault-injecting wrappers around the primitive
// contracts of package crypto. The wrappers delegate to a real
// implementation and corrupt selected outputs, which lets tests drive every
// self-test failure path without touching the primitive library.
package cryptotest

import (
	"bytes"
	"errors"
	"sync/atomic"

	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
)

// Fault selects an output to corrupt.
type Fault uint32

const (
	// FaultKeyGen makes key generation fail.
	FaultKeyGen Fault = 1 << iota
	// FaultPublicKey flips a bit of the generated public or verifying key.
	FaultPublicKey
	// FaultPrivateKey flips a bit of the generated private or signing key.
	FaultPrivateKey
	// FaultCiphertext flips a bit of the encapsulated ciphertext.
	FaultCiphertext
	// FaultEncapsulatedSecret flips a bit of the secret returned by encapsulation.
	FaultEncapsulatedSecret
	// FaultDecapsulatedSecret flips a bit of the secret returned by decapsulation.
	FaultDecapsulatedSecret
	// FaultZeroSecret makes both encapsulation and decapsulation return zeros.
	FaultZeroSecret
	// FaultEncapsulate makes encapsulation fail.
	FaultEncapsulate
	// FaultDecapsulate makes decapsulation fail.
	FaultDecapsulate
	// FaultSign makes signing fail.
	FaultSign
	// FaultSignature flips a bit of the produced signature.
	FaultSignature
	// FaultVerify makes verification reject every signature.
	FaultVerify
)

// ErrInjected is returned by operations failed on purpose.
var ErrInjected = errors.New("cryptotest: injected fault")

type faults struct {
	mask atomic.Uint32
}

// Set enables the given faults.
func (f *faults) Set(fs ...Fault) {
	for _, v := range fs {
		for {
			old := f.mask.Load()
			if f.mask.CompareAndSwap(old, old|uint32(v)) {
				break
			}
		}
	}
}

// Clear disables every fault.
func (f *faults) Clear() { f.mask.Store(0) }

func (f *faults) has(v Fault) bool { return f.mask.Load()&uint32(v) != 0 }

func flip(b []byte) []byte {
	out := bytes.Clone(b)
	if len(out) > 0 {
		out[len(out)/2] ^= 0x01
	}
	return out
}

// KEM wraps a crypto.KEM with injectable faults.
type KEM struct {
	faults
	Inner crypto.KEM
}

// NewKEM wraps inner with the given faults enabled.
func NewKEM(inner crypto.KEM, fs ...Fault) *KEM {
	k := &KEM{Inner: inner}
	k.Set(fs...)
	return k
}

// Name returns the wrapped algorithm name.
func (k *KEM) Name() string { return k.Inner.Name() }

// GenerateKeyPair delegates and applies key faults.
func (k *KEM) GenerateKeyPair(seed []byte) (crypto.KEMPublicKey, crypto.KEMPrivateKey, error) {
	if k.has(FaultKeyGen) {
		return nil, nil, ErrInjected
	}
	pk, sk, err := k.Inner.GenerateKeyPair(seed)
	if err != nil {
		return nil, nil, err
	}
	if k.has(FaultPublicKey) {
		pk = flip(pk)
	}
	if k.has(FaultPrivateKey) {
		sk = flip(sk)
	}
	return pk, sk, nil
}

// Encapsulate delegates and applies encapsulation faults.
func (k *KEM) Encapsulate(pk crypto.KEMPublicKey, rnd []byte) (crypto.KEMCiphertext, crypto.SharedSecret, error) {
	if k.has(FaultEncapsulate) {
		return nil, nil, ErrInjected
	}
	ct, ss, err := k.Inner.Encapsulate(pk, rnd)
	if err != nil {
		return nil, nil, err
	}
	if k.has(FaultCiphertext) {
		ct = flip(ct)
	}
	if k.has(FaultEncapsulatedSecret) {
		ss = flip(ss)
	}
	if k.has(FaultZeroSecret) {
		ss = make(crypto.SharedSecret, len(ss))
	}
	return ct, ss, nil
}

// Decapsulate delegates and applies decapsulation faults.
func (k *KEM) Decapsulate(sk crypto.KEMPrivateKey, ct crypto.KEMCiphertext) (crypto.SharedSecret, error) {
	if k.has(FaultDecapsulate) {
		return nil, ErrInjected
	}
	ss, err := k.Inner.Decapsulate(sk, ct)
	if err != nil {
		return nil, err
	}
	if k.has(FaultDecapsulatedSecret) {
		ss = flip(ss)
	}
	if k.has(FaultZeroSecret) {
		ss = make(crypto.SharedSecret, len(ss))
	}
	return ss, nil
}

// Signer wraps a crypto.Signer with injectable faults.
type Signer struct {
	faults
	Inner crypto.Signer
}

// NewSigner wraps inner with the given faults enabled.
func NewSigner(inner crypto.Signer, fs ...Fault) *Signer {
	s := &Signer{Inner: inner}
	s.Set(fs...)
	return s
}

// Name returns the wrapped algorithm name.
func (s *Signer) Name() string { return s.Inner.Name() }

// GenerateKeyPair delegates and applies key faults.
func (s *Signer) GenerateKeyPair(seed []byte) (crypto.VerifyingKey, crypto.SigningKey, error) {
	if s.has(FaultKeyGen) {
		return nil, nil, ErrInjected
	}
	vk, sk, err := s.Inner.GenerateKeyPair(seed)
	if err != nil {
		return nil, nil, err
	}
	if s.has(FaultPublicKey) {
		vk = flip(vk)
	}
	if s.has(FaultPrivateKey) {
		sk = flip(sk)
	}
	return vk, sk, nil
}

// Sign delegates and applies signing faults.
func (s *Signer) Sign(sk crypto.SigningKey, msg, ctx []byte, randomized bool) (crypto.Signature, error) {
	if s.has(FaultSign) {
		return nil, ErrInjected
	}
	sig, err := s.Inner.Sign(sk, msg, ctx, randomized)
	if err != nil {
		return nil, err
	}
	if s.has(FaultSignature) {
		sig = flip(sig)
	}
	return sig, nil
}

// Verify delegates unless verification is faulted.
func (s *Signer) Verify(vk crypto.VerifyingKey, msg, ctx []byte, sig crypto.Signature) error {
	if s.has(FaultVerify) {
		return ErrInjected
	}
	return s.Inner.Verify(vk, msg, ctx, sig)
}
