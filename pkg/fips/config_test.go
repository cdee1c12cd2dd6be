package fips

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, crypto.FIPSMode(), cfg.ComplianceMode)
	assert.True(t, cfg.KEMEnabled)
	assert.True(t, cfg.SignatureEnabled)
	assert.True(t, cfg.PCTOnKeyGen)
	assert.Equal(t, SchemeStatic, cfg.Credentials.Scheme)
	assert.Equal(t, LockoutPolicy{MaxAttempts: 3, Duration: 15 * time.Minute}, cfg.LockoutPolicy())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fips.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
compliance_mode: true
signature_enabled: false
pct_on_keygen: false
lockout:
  max_attempts: 5
  duration: 2m
audit:
  path: /var/log/fips/audit.jsonl
log:
  level: debug
  format: json
server:
  addr: 127.0.0.1:8443
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.ComplianceMode)
	assert.True(t, cfg.KEMEnabled, "unset keys keep defaults")
	assert.False(t, cfg.SignatureEnabled)
	assert.False(t, cfg.PCTOnKeyGen)
	assert.Equal(t, 5, cfg.Lockout.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, "/var/log/fips/audit.jsonl", cfg.Audit.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:8443", cfg.Server.Addr)
	assert.Equal(t, SchemeStatic, cfg.Credentials.Scheme)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := map[string]string{
		"syntax":           "compliance_mode: [",
		"unknown scheme":   "credentials:\n  scheme: plaintext\n",
		"negative lockout": "lockout:\n  max_attempts: -1\n",
		"zero duration":    "lockout:\n  max_attempts: 3\n  duration: 0s\n",
		"bad level":        "log:\n  level: loud\n",
		"bad format":       "log:\n  format: xml\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestConfigCredentialVerifierFromEnv(t *testing.T) {
	t.Setenv("FIPS_TEST_USER_SECRET", "from-env")

	cfg := DefaultConfig()
	cfg.Credentials.UserEnv = "FIPS_TEST_USER_SECRET"
	cfg.Credentials.CryptoOfficerEnv = "FIPS_TEST_UNSET_VARIABLE"

	v, err := cfg.CredentialVerifier()
	require.NoError(t, err)
	assert.True(t, v.Verify(RoleUser, []byte("from-env")))
	assert.False(t, v.Verify(RoleUser, []byte("user123")))
	assert.True(t, v.Verify(RoleCryptoOfficer, []byte("admin456")), "unset variable falls back")
}

func TestConfigArgon2idScheme(t *testing.T) {
	encoded, err := HashCredential([]byte("hunter2"), nil, fastArgon2)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Credentials = CredentialsConfig{Scheme: SchemeArgon2id, User: encoded}

	v, err := cfg.CredentialVerifier()
	require.NoError(t, err)
	assert.True(t, v.Verify(RoleUser, []byte("hunter2")))
	assert.False(t, v.Verify(RoleCryptoOfficer, []byte("hunter2")))

	cfg.Credentials.User = "not-a-hash"
	_, err = cfg.CredentialVerifier()
	assert.Error(t, err)

	_, err = New(cfg)
	assert.Error(t, err, "New fails on a bad credential store")
}
