// Package crypto adapts the post-quantum primitives used by the module to a
// small byte-oriented contract. Key material crosses this boundary only as
// the fixed-size encodings of FIPS 203 and FIPS 204, and every size is
// checked before the primitive library sees it.
//
// Security Note: All fresh randomness comes from crypto/rand, which sources
// entropy from the operating system's CSPRNG.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// Reader is the randomness source for seeds the caller did not supply.
var Reader io.Reader = rand.Reader

// SecureRandom reads cryptographically secure random bytes into the provided slice.
//
// This function will only return an error if the system's random number generator
// fails, which should be treated as a critical system failure.
func SecureRandom(b []byte) error {
	if _, err := io.ReadFull(Reader, b); err != nil {
		return qerrors.NewCryptoError("SecureRandom", err)
	}
	return nil
}

// SecureRandomBytes returns n cryptographically secure random bytes.
func SecureRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := SecureRandom(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ConstantTimeCompare compares two byte slices in constant time.
// Slices of different length compare unequal.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// IsZero reports whether b holds only zero bytes, in time independent of
// the contents.
func IsZero(b []byte) bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return subtle.ConstantTimeByteEq(acc, 0) == 1
}

// Zeroize overwrites b with zeros.
//
// Note: The Go runtime may have already copied the data. Copies made by the
// primitive library while unpacking keys are outside our control.
func Zeroize(b []byte) {
	clear(b)
}

// ZeroizeMultiple securely erases multiple byte slices.
func ZeroizeMultiple(slices ...[]byte) {
	for _, s := range slices {
		Zeroize(s)
	}
}

// seedOrRandom returns seed unchanged when it is non-nil, otherwise n fresh
// random bytes. The second result reports whether the caller owns (and must
// zeroize) the returned slice.
func seedOrRandom(seed []byte, n int) ([]byte, bool, error) {
	if seed != nil {
		return seed, false, nil
	}
	b, err := SecureRandomBytes(n)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
