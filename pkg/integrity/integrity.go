// Package integrity implements the software integrity test: an HMAC-SHA-256
// over the code region of the module's executable, compared in constant time
// with a checksum embedded at link time.
//
// The expected checksum is provisioned in two steps. Build once, compute the
// digest of the artifact with "fips-module digest <binary>", then rebuild
// with
//
//	-ldflags "-X github.com/pzverkov/quantum-go-fips/pkg/integrity.ExpectedChecksum=<hex>"
//
// Until then ExpectedChecksum holds the placeholder and the check is skipped.
package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pzverkov/quantum-go-fips/internal/constants"
	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// ExpectedChecksum is the hex-encoded expected digest, set at link time.
var ExpectedChecksum = constants.IntegrityPlaceholder

// Placeholder is the value of ExpectedChecksum in an unprovisioned build.
const Placeholder = constants.IntegrityPlaceholder

// Digest is an HMAC-SHA-256 integrity checksum.
type Digest [constants.IntegrityDigestSize]byte

// String returns the hex encoding of d.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// ParseDigest decodes a hex-encoded digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("integrity: parse digest: %w", err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("integrity: parse digest: %w", qerrors.ErrInvalidKeySize)
	}
	copy(d[:], b)
	return d, nil
}

// Provisioned reports whether an expected checksum has been embedded.
func Provisioned() bool {
	return ExpectedChecksum != Placeholder && ExpectedChecksum != ""
}

// Expected returns the embedded checksum. It fails when the build is not
// provisioned or the embedded value is malformed.
func Expected() (Digest, error) {
	if !Provisioned() {
		return Digest{}, fmt.Errorf("integrity: expected checksum not provisioned")
	}
	return ParseDigest(ExpectedChecksum)
}

// Compute returns the integrity checksum of data under the module key.
func Compute(data []byte) Digest {
	mac := hmac.New(sha256.New, []byte(constants.IntegrityKey))
	mac.Write(data)
	var d Digest
	copy(d[:], mac.Sum(nil))
	return d
}

// Verifier computes and checks the checksum of a code region.
type Verifier struct {
	locator CodeRegionLocator
}

// NewVerifier returns a Verifier reading the region from loc. A nil loc
// selects the running executable.
func NewVerifier(loc CodeRegionLocator) *Verifier {
	if loc == nil {
		loc = ExecutableLocator{}
	}
	return &Verifier{locator: loc}
}

// Digest locates the code region and returns its checksum. A region that
// cannot be located is reported as errors.ErrPlatform.
func (v *Verifier) Digest() (Digest, Region, error) {
	region, err := v.locator.Locate()
	if err != nil {
		if qerrors.Is(err, qerrors.ErrPlatform) {
			return Digest{}, Region{}, err
		}
		return Digest{}, Region{}, fmt.Errorf("%w: %v", qerrors.ErrPlatform, err)
	}
	return Compute(region.Data), region, nil
}

// Verify checks the located region against expected.
func (v *Verifier) Verify(expected Digest) error {
	actual, region, err := v.Digest()
	if err != nil {
		return err
	}
	if !hmac.Equal(actual[:], expected[:]) {
		return fmt.Errorf("%w: region %s", qerrors.ErrIntegrityCheckFailure, region.Name)
	}
	return nil
}
