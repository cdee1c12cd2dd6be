package fips

import (
	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
	"github.com/pzverkov/quantum-go-fips/pkg/selftest"
)

// Operation names used in metrics.
const (
	opKEMKeyGen       = "kem_keygen"
	opEncapsulate     = "encapsulate"
	opDecapsulate     = "decapsulate"
	opSignatureKeyGen = "signature_keygen"
	opSign            = "sign"
	opVerify          = "verify"
)

// authorize admits an operation of an enabled family on an operational
// module with a User session, checked in that order.
func (m *Module) authorize(op string, enabled bool) error {
	err := func() error {
		if !enabled {
			return qerrors.ErrAlgorithmDisabled
		}
		if err := m.state.Require(); err != nil {
			return err
		}
		return m.session.CheckAuthority(RoleUser)
	}()
	if err != nil {
		m.collector.RecordOperation(op, "denied")
		return qerrors.NewCryptoError("fips."+op, err)
	}
	return nil
}

func (m *Module) done(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.collector.RecordOperation(op, result)
}

// GenerateKEMKeyPair generates an ML-KEM-1024 key pair. A nil seed draws
// fresh randomness; otherwise seed must be 64 bytes. With PCTOnKeyGen the
// pair is checked before it is returned, and a failure moves the module to
// the error state.
func (m *Module) GenerateKEMKeyPair(seed []byte) (crypto.KEMPublicKey, crypto.KEMPrivateKey, error) {
	if err := m.authorize(opKEMKeyGen, m.cfg.KEMEnabled); err != nil {
		return nil, nil, err
	}

	pk, sk, err := m.kem.GenerateKeyPair(seed)
	if err == nil && m.cfg.PCTOnKeyGen {
		if err = m.operatorPCT(m.kem.Name(), func() error { return selftest.KEMPCT(m.kem, pk, sk) }); err != nil {
			sk.Zeroize()
		}
	}
	m.done(opKEMKeyGen, err)
	if err != nil {
		return nil, nil, err
	}
	return pk, sk, nil
}

// Encapsulate produces a ciphertext and shared secret for pk. A nil
// randomness draws fresh randomness.
func (m *Module) Encapsulate(pk crypto.KEMPublicKey, randomness []byte) (crypto.KEMCiphertext, crypto.SharedSecret, error) {
	if err := m.authorize(opEncapsulate, m.cfg.KEMEnabled); err != nil {
		return nil, nil, err
	}
	ct, ss, err := m.kem.Encapsulate(pk, randomness)
	m.done(opEncapsulate, err)
	return ct, ss, err
}

// Decapsulate recovers the shared secret from ct.
func (m *Module) Decapsulate(sk crypto.KEMPrivateKey, ct crypto.KEMCiphertext) (crypto.SharedSecret, error) {
	if err := m.authorize(opDecapsulate, m.cfg.KEMEnabled); err != nil {
		return nil, err
	}
	ss, err := m.kem.Decapsulate(sk, ct)
	m.done(opDecapsulate, err)
	return ss, err
}

// GenerateSigningKeyPair generates an ML-DSA-65 key pair. A nil seed draws
// fresh randomness; otherwise seed must be 32 bytes.
func (m *Module) GenerateSigningKeyPair(seed []byte) (crypto.VerifyingKey, crypto.SigningKey, error) {
	if err := m.authorize(opSignatureKeyGen, m.cfg.SignatureEnabled); err != nil {
		return nil, nil, err
	}

	vk, sk, err := m.signer.GenerateKeyPair(seed)
	if err == nil && m.cfg.PCTOnKeyGen {
		if err = m.operatorPCT(m.signer.Name(), func() error { return selftest.SignaturePCT(m.signer, vk, sk) }); err != nil {
			sk.Zeroize()
		}
	}
	m.done(opSignatureKeyGen, err)
	if err != nil {
		return nil, nil, err
	}
	return vk, sk, nil
}

// Sign signs msg under the context string context. Any failure of the
// primitive is reported as errors.ErrErrorState.
func (m *Module) Sign(sk crypto.SigningKey, msg, context []byte, randomized bool) (crypto.Signature, error) {
	if err := m.authorize(opSign, m.cfg.SignatureEnabled); err != nil {
		return nil, err
	}
	sig, err := m.signer.Sign(sk, msg, context, randomized)
	m.done(opSign, err)
	if err != nil {
		return nil, qerrors.NewCryptoError("fips."+opSign, qerrors.ErrErrorState)
	}
	return sig, nil
}

// Verify checks sig over msg and context. Any failure, including an invalid
// signature, is reported as errors.ErrErrorState.
func (m *Module) Verify(vk crypto.VerifyingKey, msg, context []byte, sig crypto.Signature) error {
	if err := m.authorize(opVerify, m.cfg.SignatureEnabled); err != nil {
		return err
	}
	err := m.signer.Verify(vk, msg, context, sig)
	m.done(opVerify, err)
	if err != nil {
		return qerrors.NewCryptoError("fips."+opVerify, qerrors.ErrErrorState)
	}
	return nil
}
