//go:build windows && !386

package driver

// On 64-bit builds the serial fits one machine word.
func serialArgs(serial int64) []uintptr {
	return []uintptr{uintptr(serial)}
}
