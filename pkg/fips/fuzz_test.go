package fips

import (
	"testing"
)

// Run with:
//
//	go test -fuzz=FuzzParseHashedCredential -fuzztime=30s ./pkg/fips/
//	go test -fuzz=FuzzParseRole -fuzztime=30s ./pkg/fips/

// FuzzParseHashedCredential fuzzes the argon2id credential decoder, which
// reads operator-supplied configuration.
func FuzzParseHashedCredential(f *testing.F) {
	good, err := HashCredential([]byte("x"), []byte("0123456789abcdef"), fastArgon2)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(good)
	f.Add("")
	f.Add("$argon2id$v=19$m=8,t=1,p=1$$")
	f.Add("$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA")

	f.Fuzz(func(t *testing.T, encoded string) {
		h, err := parseHashedCredential(encoded)
		if err != nil {
			return
		}
		if h.params.Time == 0 || h.params.Threads == 0 {
			t.Errorf("accepted zero cost parameters: %+v", h.params)
		}
		if len(h.key) == 0 || int(h.params.KeyLen) != len(h.key) {
			t.Errorf("key length %d does not match params %d", len(h.key), h.params.KeyLen)
		}
	})
}

// FuzzParseRole checks that only the two operator roles are ever accepted.
func FuzzParseRole(f *testing.F) {
	for _, s := range []string{"user", "crypto_officer", "co", "none", "", "USER"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		r, err := ParseRole(s)
		if err != nil {
			return
		}
		if r != RoleUser && r != RoleCryptoOfficer {
			t.Errorf("ParseRole(%q) = %v", s, r)
		}
	})
}
