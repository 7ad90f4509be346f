package nexusedge

import (
	"github.com/avanlier/NexusEdge/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects
// can construct or modify it programmatically.
type Config = config.Config

type (
	// DeviceConfig holds the adapter construction parameters.
	DeviceConfig = config.DeviceConfig
	// RecorderConfig configures the on-disk block journal.
	RecorderConfig = config.RecorderConfig
	// TimescaleConfig configures the sink.
	TimescaleConfig = config.TimescaleConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
