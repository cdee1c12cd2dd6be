package selftest

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashCAST is a conditional algorithm self-test of one hash primitive: the
// digest of Input must equal Expected byte for byte.
type HashCAST struct {
	Name     string
	Sum      func(input []byte) []byte
	Input    []byte
	Expected []byte
}

// Run executes the CAST.
func (c HashCAST) Run() error {
	if c.Sum == nil {
		return Fail(TestHashCAST, c.Name, "no hash function")
	}
	if got := c.Sum(c.Input); !bytes.Equal(got, c.Expected) {
		return Fail(TestHashCAST, c.Name, "digest mismatch")
	}
	return nil
}

// WithExpected returns a copy of c checked against a different answer.
func (c HashCAST) WithExpected(expected []byte) HashCAST {
	c.Expected = expected
	return c
}

func sha3_256(b []byte) []byte {
	d := sha3.Sum256(b)
	return d[:]
}

func sha3_512(b []byte) []byte {
	d := sha3.Sum512(b)
	return d[:]
}

func shake128_32(b []byte) []byte {
	out := make([]byte, 32)
	sha3.ShakeSum128(out, b)
	return out
}

func shake256_32(b []byte) []byte {
	out := make([]byte, 32)
	sha3.ShakeSum256(out, b)
	return out
}

// FIPS 202 digests of the empty message.
const (
	sha3_256Empty = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	sha3_512Empty = "a69f73cca23a9ac5c8b567dc185a756e97c982164fe25859e0d1dcc1475c80a6" +
		"15b2123af1f5f94c11e3e9402c3ac558f500199d95b6d3e301758586281dcd26"
	shake128Empty = "7f9c2ba4e88f827d616045507605853ed73b8093f6efbc88eb1a6eacfa66ef26"
	shake256Empty = "46b9dd2b0ba88d13233b3feb743eeb243fcd52ea62b81b82b50c27646ed5762f"
)

// DefaultHashCASTs returns the CASTs run at every POST: SHA3-256, SHA3-512,
// SHAKE128 and SHAKE256 over the empty message.
func DefaultHashCASTs() []HashCAST {
	return []HashCAST{
		{Name: "SHA3-256", Sum: sha3_256, Input: []byte{}, Expected: mustHex(sha3_256Empty)},
		{Name: "SHA3-512", Sum: sha3_512, Input: []byte{}, Expected: mustHex(sha3_512Empty)},
		{Name: "SHAKE128", Sum: shake128_32, Input: []byte{}, Expected: mustHex(shake128Empty)},
		{Name: "SHAKE256", Sum: shake256_32, Input: []byte{}, Expected: mustHex(shake256Empty)},
	}
}

// RunHashCASTs runs the given CASTs in order and returns the first failure.
func RunHashCASTs(casts ...HashCAST) error {
	for _, c := range casts {
		if err := c.Run(); err != nil {
			return err
		}
	}
	return nil
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("selftest: bad embedded hex: " + err.Error())
	}
	return b
}
