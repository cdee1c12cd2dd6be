//go:build !linux && !freebsd && !netbsd && !openbsd && !dragonfly && !darwin && !windows

package integrity

// Integrity verification fails closed here.
const nativeFormat Format = ""
