package fips

import (
	"bytes"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
)

// CSP kinds that can be exported as plaintext.
const (
	CSPKEMPrivateKey = "kem_private_key"
	CSPSigningKey    = "signing_key"
	CSPSharedSecret  = "shared_secret"
)

// ExportBlocked returns errors.ErrCSPExportBlocked in compliance mode and
// nil otherwise. The operator role does not matter.
func (m *Module) ExportBlocked() error {
	if m.cfg.ComplianceMode {
		return qerrors.ErrCSPExportBlocked
	}
	return nil
}

// ExportKEMPrivateKey returns a plaintext copy of sk.
func (m *Module) ExportKEMPrivateKey(sk crypto.KEMPrivateKey) ([]byte, error) {
	return m.export(CSPKEMPrivateKey, sk, constants.MLKEMPrivateKeySize)
}

// ExportSigningKey returns a plaintext copy of sk.
func (m *Module) ExportSigningKey(sk crypto.SigningKey) ([]byte, error) {
	return m.export(CSPSigningKey, sk, constants.MLDSAPrivateKeySize)
}

// ExportSharedSecret returns a plaintext copy of ss.
func (m *Module) ExportSharedSecret(ss crypto.SharedSecret) ([]byte, error) {
	return m.export(CSPSharedSecret, ss, constants.MLKEMSharedSecretSize)
}

func (m *Module) export(kind string, csp []byte, size int) ([]byte, error) {
	if err := m.state.Require(); err != nil {
		return nil, err
	}

	role := m.session.Role()
	log := m.logger.Named("csp")
	if err := m.ExportBlocked(); err != nil {
		m.collector.RecordCSPExport(kind, "blocked")
		log.Warn("plaintext CSP export blocked", metrics.Fields{"csp": kind, "role": role.String()})
		_ = m.record(audit.NewEvent(audit.EventCSPBlocked, audit.ResultFailure, m.now()).
			WithActor(operatorActor(role)).
			WithContext(audit.Context{CSP: kind, Role: role.String()}))
		return nil, err
	}

	if len(csp) != size {
		m.collector.RecordCSPExport(kind, "invalid")
		return nil, qerrors.NewCryptoError("fips.Export", qerrors.ErrInvalidKeySize)
	}

	// An export that cannot be audited does not happen.
	if err := m.record(audit.NewEvent(audit.EventCSPExport, audit.ResultSuccess, m.now()).
		WithActor(operatorActor(role)).
		WithContext(audit.Context{CSP: kind, Role: role.String()})); err != nil {
		m.collector.RecordCSPExport(kind, "error")
		return nil, err
	}
	m.collector.RecordCSPExport(kind, "allowed")
	log.Info("plaintext CSP exported", metrics.Fields{"csp": kind, "role": role.String()})
	return bytes.Clone(csp), nil
}
