//go:build fips

package crypto

// FIPSMode reports whether the binary was built with the "fips" tag.
// In that build compliance mode is on by default: KATs and the integrity
// check run at POST and CSP export is refused.
func FIPSMode() bool { return true }
