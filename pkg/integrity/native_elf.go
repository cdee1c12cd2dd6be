//go:build linux || freebsd || netbsd || openbsd || dragonfly

package integrity

const nativeFormat = FormatELF
