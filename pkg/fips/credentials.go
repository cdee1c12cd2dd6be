package fips

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
)

// CredentialVerifier decides whether credential authenticates role.
// Implementations must compare in constant time.
type CredentialVerifier interface {
	Verify(role Role, credential []byte) bool
}

// StaticCredentials compares against one fixed secret per role. It exists
// for demonstration and tests; deployments use HashedCredentials.
type StaticCredentials struct {
	User          string
	CryptoOfficer string
}

var _ CredentialVerifier = StaticCredentials{}

// DefaultStaticCredentials returns the illustrative built-in secrets.
func DefaultStaticCredentials() StaticCredentials {
	return StaticCredentials{
		User:          constants.DefaultUserCredential,
		CryptoOfficer: constants.DefaultCryptoOfficerCredential,
	}
}

// Verify implements CredentialVerifier.
func (c StaticCredentials) Verify(role Role, credential []byte) bool {
	var want string
	switch role {
	case RoleUser:
		want = c.User
	case RoleCryptoOfficer:
		want = c.CryptoOfficer
	default:
		return false
	}
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), credential) == 1
}

// Argon2Params are the Argon2id cost parameters of a stored credential.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultArgon2Params follows the RFC 9106 second recommended option.
var DefaultArgon2Params = Argon2Params{Time: 3, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

const argon2SaltSize = 16

// HashCredential encodes credential as
// $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<hash>.
// A nil salt draws a fresh random one.
func HashCredential(credential, salt []byte, p Argon2Params) (string, error) {
	if salt == nil {
		var err error
		if salt, err = crypto.SecureRandomBytes(argon2SaltSize); err != nil {
			return "", err
		}
	}
	key := argon2.IDKey(credential, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

type hashedCredential struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func parseHashedCredential(encoded string) (hashedCredential, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return hashedCredential{}, fmt.Errorf("fips: malformed argon2id credential")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return hashedCredential{}, fmt.Errorf("fips: unsupported argon2 version %q", parts[2])
	}

	var h hashedCredential
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Time, &h.params.Threads); err != nil {
		return hashedCredential{}, fmt.Errorf("fips: malformed argon2 parameters: %w", err)
	}
	if h.params.Time == 0 || h.params.Threads == 0 {
		return hashedCredential{}, fmt.Errorf("fips: argon2 parameters must be positive")
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return hashedCredential{}, fmt.Errorf("fips: malformed argon2 salt: %w", err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return hashedCredential{}, fmt.Errorf("fips: malformed argon2 hash")
	}
	h.params.KeyLen = uint32(len(h.key))
	return h, nil
}

// HashedCredentials verifies against salted Argon2id hashes.
type HashedCredentials struct {
	entries map[Role]hashedCredential
}

var _ CredentialVerifier = (*HashedCredentials)(nil)

// NewHashedCredentials parses the encoded hashes produced by HashCredential.
// Roles without an entry can never log in.
func NewHashedCredentials(hashes map[Role]string) (*HashedCredentials, error) {
	hc := &HashedCredentials{entries: make(map[Role]hashedCredential, len(hashes))}
	for role, encoded := range hashes {
		if role != RoleUser && role != RoleCryptoOfficer {
			return nil, fmt.Errorf("fips: no credential can be set for role %s", role)
		}
		h, err := parseHashedCredential(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s credential: %w", role, err)
		}
		hc.entries[role] = h
	}
	return hc, nil
}

// Verify implements CredentialVerifier.
func (c *HashedCredentials) Verify(role Role, credential []byte) bool {
	h, ok := c.entries[role]
	if !ok {
		return false
	}
	key := argon2.IDKey(credential, h.salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	defer crypto.Zeroize(key)
	return subtle.ConstantTimeCompare(key, h.key) == 1
}
