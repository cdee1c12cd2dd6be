//go:build darwin

package integrity

const nativeFormat = FormatMachO
