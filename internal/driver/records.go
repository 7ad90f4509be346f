package driver

import (
	"bytes"
	"strings"

	"github.com/avanlier/NexusEdge/internal/domain"
)

const textFieldLen = 40

// DeviceInfoRecord mirrors the native DeviceInfo struct. Field order and
// sizes are part of the driver ABI and must not change.
type DeviceInfoRecord struct {
	Name             [textFieldLen]byte
	SerialNumber     [textFieldLen]byte
	Description      [textFieldLen]byte
	ConnectionType   [textFieldLen]byte
	TypeID           uint32
	NumberOfChannels uint32
	Authenticated    uint8
}

// ChannelInfoRecord mirrors the native ChannelInfo struct.
type ChannelInfoRecord struct {
	Name       [textFieldLen]byte
	SampleRate uint32
	TypeID     uint32
}

// decodeText interprets a fixed-width native text field: everything up to
// the first NUL, with trailing space padding trimmed.
func decodeText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " ")
}

// Descriptor converts the raw record into the immutable device descriptor.
func (r *DeviceInfoRecord) Descriptor() domain.DeviceDescriptor {
	return domain.DeviceDescriptor{
		Name:             decodeText(r.Name[:]),
		Serial:           domain.ParseSerialNumber(decodeText(r.SerialNumber[:])),
		Description:      decodeText(r.Description[:]),
		ConnectionType:   decodeText(r.ConnectionType[:]),
		TypeID:           r.TypeID,
		NumberOfChannels: int(r.NumberOfChannels),
		Authenticated:    r.Authenticated != 0,
	}
}

// Descriptor converts the raw record into a channel descriptor, resolving
// the type id against the fixed unit/class table.
func (r *ChannelInfoRecord) Descriptor() (domain.ChannelDescriptor, error) {
	unit, class, err := domain.ChannelTypeInfo(r.TypeID)
	if err != nil {
		return domain.ChannelDescriptor{}, err
	}
	return domain.ChannelDescriptor{
		Name:       decodeText(r.Name[:]),
		SampleRate: r.SampleRate,
		TypeID:     r.TypeID,
		Unit:       unit,
		Class:      class,
	}, nil
}
