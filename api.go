package nexusedge

import (
	base "github.com/avanlier/NexusEdge/pkg/nexusedge"
)

// Re-exported errors for convenience.
var (
	ErrUnsupportedEnvironment = base.ErrUnsupportedEnvironment
	ErrDriverLoad             = base.ErrDriverLoad
	ErrInvalidConfiguration   = base.ErrInvalidConfiguration
	ErrAuthenticationFailed   = base.ErrAuthenticationFailed
	ErrQueryFailed            = base.ErrQueryFailed
	ErrUnknownChannelType     = base.ErrUnknownChannelType
	ErrChannelSinkClosed      = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import github.com/avanlier/NexusEdge directly.
type (
	Config            = base.Config
	DeviceConfig      = base.DeviceConfig
	RecorderConfig    = base.RecorderConfig
	TimescaleConfig   = base.TimescaleConfig
	MetricsConfig     = base.MetricsConfig
	Policy            = base.Policy
	Runtime           = base.Runtime
	RuntimeOption     = base.RuntimeOption
	Block             = base.Block
	BlockFunc         = base.BlockFunc
	BlockSource       = base.BlockSource
	BlockSink         = base.BlockSink
	Recorder          = base.Recorder
	RecorderStats     = base.RecorderStats
	EntryID           = base.EntryID
	Observability     = base.Observability
	Field             = base.Field
	Driver            = base.Driver
	DeliveryFunc      = base.DeliveryFunc
	DeviceInfoRecord  = base.DeviceInfoRecord
	ChannelInfoRecord = base.ChannelInfoRecord
	DeviceDescriptor  = base.DeviceDescriptor
	ChannelDescriptor = base.ChannelDescriptor
	SerialNumber      = base.SerialNumber
	SearchMode        = base.SearchMode
	ConnectionError   = base.ConnectionError
	Stage             = base.Stage
)

const (
	SearchAuto      = base.SearchAuto
	SearchUSB       = base.SearchUSB
	SearchBluetooth = base.SearchBluetooth

	StageInit  = base.StageInit
	StageAuth  = base.StageAuth
	StageQuery = base.StageQuery
	StageStart = base.StageStart
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime construction and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithDriver(d Driver) RuntimeOption {
	return base.WithDriver(d)
}

func WithSource(s BlockSource) RuntimeOption {
	return base.WithSource(s)
}

func WithSink(s BlockSink) RuntimeOption {
	return base.WithSink(s)
}

func WithRecorder(r Recorder) RuntimeOption {
	return base.WithRecorder(r)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Sink adapters.
func NewCallbackSink(name string, fn BlockFunc) BlockSink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (BlockSink, <-chan *Block, func()) {
	return base.NewChannelSink(name, buffer)
}
