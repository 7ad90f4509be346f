package nexusedge

import (
	"github.com/avanlier/NexusEdge/internal/domain"
	"github.com/avanlier/NexusEdge/internal/driver"
	"github.com/avanlier/NexusEdge/internal/ports"
)

// Block is the unit of data handed to the host each polling cycle: a
// contiguous run of samples, rows by channels, labeled with channel names.
type Block = domain.SampleBlock

// DeviceDescriptor identifies the connected device.
type DeviceDescriptor = domain.DeviceDescriptor

// SerialNumber is the structured device serial.
type SerialNumber = domain.SerialNumber

// ChannelDescriptor describes one acquisition channel, including the
// unit/class metadata resolved from the native type id.
type ChannelDescriptor = domain.ChannelDescriptor

// Driver is the typed view of the vendor driver entry points. Embedders can
// supply their own implementation (simulators, replays) via WithDriver.
type Driver = driver.Driver

// DeliveryFunc receives one delivery event from the native driver.
type DeliveryFunc = driver.DeliveryFunc

// DeviceInfoRecord is the fixed-layout native device info record.
type DeviceInfoRecord = driver.DeviceInfoRecord

// ChannelInfoRecord is the fixed-layout native channel info record.
type ChannelInfoRecord = driver.ChannelInfoRecord

// SearchMode selects how the native driver discovers a device.
type SearchMode = driver.SearchMode

const (
	SearchAuto      = driver.SearchAuto
	SearchUSB       = driver.SearchUSB
	SearchBluetooth = driver.SearchBluetooth
)

// ConnectionError reports a failed native call with its code table message
// and the connection stage it interrupted.
type ConnectionError = driver.ConnectionError

// Stage identifies the connection phase of a failure.
type Stage = driver.Stage

const (
	StageInit  = driver.StageInit
	StageAuth  = driver.StageAuth
	StageQuery = driver.StageQuery
	StageStart = driver.StageStart
)

// BlockSource is the pull side of a streaming acquisition.
type BlockSource = ports.BlockSource

// BlockSink consumes polled blocks.
type BlockSink = ports.BlockSink

// Recorder journals polled blocks for replay after a crash.
type Recorder = ports.Recorder

// RecorderStats exposes journal metadata for observability.
type RecorderStats = ports.RecorderStats

// EntryID uniquely identifies a journal entry.
type EntryID = ports.EntryID

// Observability emits metrics and logs about the pipeline.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Policy controls the polling cadence and sink failure handling.
type Policy = ports.Policy

// Re-exported errors so embedders can match failures with errors.Is.
var (
	ErrUnsupportedEnvironment = driver.ErrUnsupportedEnvironment
	ErrDriverLoad             = driver.ErrDriverLoad
	ErrInvalidConfiguration   = driver.ErrInvalidConfiguration
	ErrAuthenticationFailed   = driver.ErrAuthenticationFailed
	ErrQueryFailed            = driver.ErrQueryFailed
	ErrUnknownChannelType     = domain.ErrUnknownChannelType
)
