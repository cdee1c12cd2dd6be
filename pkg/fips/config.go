package fips

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
)

// Credential schemes.
const (
	SchemeStatic   = "static"
	SchemeArgon2id = "argon2id"
)

// Config selects the behavior of a Module.
type Config struct {
	// ComplianceMode enables KATs, the integrity check and the CSP export
	// block. It defaults to true in builds with the "fips" tag.
	ComplianceMode bool `yaml:"compliance_mode"`

	KEMEnabled       bool `yaml:"kem_enabled"`
	SignatureEnabled bool `yaml:"signature_enabled"`

	// PCTOnKeyGen runs a pairwise consistency test after every operator
	// key generation.
	PCTOnKeyGen bool `yaml:"pct_on_keygen"`

	Credentials CredentialsConfig `yaml:"credentials"`
	Lockout     LockoutConfig     `yaml:"lockout"`
	Audit       AuditConfig       `yaml:"audit"`
	Log         LogConfig         `yaml:"log"`
	Server      ServerConfig      `yaml:"server"`
}

// CredentialsConfig configures operator authentication. With the static
// scheme User and CryptoOfficer are the secrets; with argon2id they are
// encoded hashes from HashCredential. The *Env fields name environment
// variables that override the inline values.
type CredentialsConfig struct {
	Scheme           string `yaml:"scheme"`
	User             string `yaml:"user"`
	CryptoOfficer    string `yaml:"crypto_officer"`
	UserEnv          string `yaml:"user_env"`
	CryptoOfficerEnv string `yaml:"crypto_officer_env"`
}

// LockoutConfig configures AC-7 login lockout.
type LockoutConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Duration    time.Duration `yaml:"duration"`
}

// AuditConfig configures the audit trail. An empty Path disables it.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures the technical log.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig enables both families with the built-in illustrative
// credentials.
func DefaultConfig() Config {
	return Config{
		ComplianceMode:   crypto.FIPSMode(),
		KEMEnabled:       true,
		SignatureEnabled: true,
		PCTOnKeyGen:      true,
		Credentials: CredentialsConfig{
			Scheme:        SchemeStatic,
			User:          constants.DefaultUserCredential,
			CryptoOfficer: constants.DefaultCryptoOfficerCredential,
		},
		Lockout: LockoutConfig{
			MaxAttempts: constants.DefaultMaxLoginAttempts,
			Duration:    constants.DefaultLockoutSeconds * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":9090",
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Credentials.Scheme {
	case SchemeStatic, SchemeArgon2id:
	default:
		return fmt.Errorf("credentials.scheme: unsupported scheme %q", c.Credentials.Scheme)
	}
	if c.Lockout.MaxAttempts < 0 {
		return fmt.Errorf("lockout.max_attempts must not be negative")
	}
	if c.Lockout.MaxAttempts > 0 && c.Lockout.Duration <= 0 {
		return fmt.Errorf("lockout.duration must be positive when lockout is enabled")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error", "silent":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// CredentialVerifier builds the verifier selected by Credentials.
func (c Config) CredentialVerifier() (CredentialVerifier, error) {
	user := envOr(c.Credentials.UserEnv, c.Credentials.User)
	officer := envOr(c.Credentials.CryptoOfficerEnv, c.Credentials.CryptoOfficer)

	switch c.Credentials.Scheme {
	case SchemeStatic:
		return StaticCredentials{User: user, CryptoOfficer: officer}, nil
	case SchemeArgon2id:
		hashes := make(map[Role]string, 2)
		if user != "" {
			hashes[RoleUser] = user
		}
		if officer != "" {
			hashes[RoleCryptoOfficer] = officer
		}
		return NewHashedCredentials(hashes)
	default:
		return nil, fmt.Errorf("credentials.scheme: unsupported scheme %q", c.Credentials.Scheme)
	}
}

// LockoutPolicy returns the lockout settings.
func (c Config) LockoutPolicy() LockoutPolicy {
	return LockoutPolicy{MaxAttempts: c.Lockout.MaxAttempts, Duration: c.Lockout.Duration}
}

func envOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
