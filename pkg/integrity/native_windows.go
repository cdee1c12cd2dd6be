//go:build windows

package integrity

const nativeFormat = FormatPE
