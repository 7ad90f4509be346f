package driver

import (
	"errors"
	"fmt"
)

// SearchMode selects how the native driver discovers a device. The numeric
// values are part of the driver ABI.
type SearchMode int

const (
	SearchAuto SearchMode = iota
	SearchUSB
	SearchBluetooth
)

// ErrInvalidConfiguration reports a construction parameter the device layer
// does not recognize.
var ErrInvalidConfiguration = errors.New("nexusedge: invalid configuration")

// ParseSearchMode maps a configuration string onto the native search mode.
func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case "auto":
		return SearchAuto, nil
	case "usb":
		return SearchUSB, nil
	case "bluetooth":
		return SearchBluetooth, nil
	}
	return 0, fmt.Errorf("%w: search_mode must be auto, usb or bluetooth, got %q", ErrInvalidConfiguration, s)
}

func (m SearchMode) String() string {
	switch m {
	case SearchAuto:
		return "auto"
	case SearchUSB:
		return "usb"
	case SearchBluetooth:
		return "bluetooth"
	}
	return fmt.Sprintf("searchmode(%d)", int(m))
}

// DeliveryFunc receives one delivery event from the native driver. It is
// invoked on the driver's own thread with an owned copy of the flat
// row-major sample buffer (nSamples*nChannels values).
type DeliveryFunc func(nSamples, nChannels int, samples []float32)

// Driver is the typed view of the vendor driver's C entry points. Return
// codes follow the native protocol: 0 is success, negative values index the
// error-code table, and Init may return AuthRequiredCode.
type Driver interface {
	Init(cb DeliveryFunc, mode SearchMode, serial int64) int
	DeviceInfo(out *DeviceInfoRecord) bool
	ChannelInfo(index int, out *ChannelInfoRecord) bool
	Start(rate *uint32) int
	Stop() int
	ShowAuthenticationWindow() int
}

// serialWords32 splits a serial number into the two stack words a 32-bit
// stdcall callee reads for an 8-byte integer argument, low word first.
func serialWords32(serial int64) (lo, hi uintptr) {
	return uintptr(uint32(uint64(serial))), uintptr(uint32(uint64(serial) >> 32))
}
