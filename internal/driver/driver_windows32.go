//go:build windows && 386

package driver

// The DLL reads Init's serial argument as a single 8-byte integer, which on
// a 32-bit stack spans two words.
func serialArgs(serial int64) []uintptr {
	lo, hi := serialWords32(serial)
	return []uintptr{lo, hi}
}
