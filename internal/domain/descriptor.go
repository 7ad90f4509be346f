package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// DeviceDescriptor is the identity of the connected device, captured once
// after a successful query and immutable for the adapter's lifetime.
type DeviceDescriptor struct {
	Name             string
	Serial           SerialNumber
	Description      string
	ConnectionType   string
	TypeID           uint32
	NumberOfChannels int
	Authenticated    bool
}

// SerialNumber is the structured form of the device serial string:
// positions 0-3 carry the device-type code, 4-5 the two-digit year, and
// 6-9 the index of the unit within that year.
type SerialNumber struct {
	Raw      string
	TypeCode string
	Year     int
	Index    int
}

// ParseSerialNumber splits a raw serial string into its fixed positional
// fields. Serials shorter than the full layout keep whatever prefix fields
// could be decoded; Raw always holds the original string.
func ParseSerialNumber(raw string) SerialNumber {
	sn := SerialNumber{Raw: raw}
	if len(raw) >= 4 {
		sn.TypeCode = raw[0:4]
	}
	if len(raw) >= 6 {
		if y, err := strconv.Atoi(raw[4:6]); err == nil {
			sn.Year = y
		}
	}
	if len(raw) >= 10 {
		if n, err := strconv.Atoi(raw[6:10]); err == nil {
			sn.Index = n
		}
	}
	return sn
}

// ChannelDescriptor describes one acquisition channel. The slice index of a
// descriptor equals the native channel index, and that order matches the
// column order of delivered sample blocks.
type ChannelDescriptor struct {
	Name       string
	SampleRate uint32
	TypeID     uint32
	Unit       string
	Class      string
}

// ErrUnknownChannelType reports a channel type id outside the fixed
// unit/class table, which means the device returned corrupt channel info.
var ErrUnknownChannelType = errors.New("nexusedge: unknown channel type id")

var channelTypeTable = []struct {
	unit  string
	class string
}{
	{"NA", "NA"},
	{"uV", "voltage"},
	{"uV", "voltage"},
	{"mV", "voltage"},
	{"Bit", "Binary"},
}

// ChannelTypeInfo maps a native channel type id to its unit and signal
// class. Ids outside the table fail rather than index out of bounds.
func ChannelTypeInfo(id uint32) (unit, class string, err error) {
	if int(id) >= len(channelTypeTable) {
		return "", "", fmt.Errorf("%w: %d", ErrUnknownChannelType, id)
	}
	entry := channelTypeTable[id]
	return entry.unit, entry.class, nil
}
