//go:build !fips

package crypto

// FIPSMode reports whether the binary was built with the "fips" tag.
// Without it compliance mode defaults to off and only the hash CASTs and
// pairwise consistency tests run at POST.
func FIPSMode() bool { return false }
