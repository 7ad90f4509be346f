package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avanlier/NexusEdge/internal/driver"
	"github.com/avanlier/NexusEdge/internal/ports"
)

type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Policy    ports.Policy    `yaml:"policy"`
	Recorder  RecorderConfig  `yaml:"recorder"`
	Timescale TimescaleConfig `yaml:"timescale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DeviceConfig holds the host-facing construction parameters for the
// acquisition adapter.
type DeviceConfig struct {
	SamplingRate uint32 `yaml:"sampling_rate"`
	SearchMode   string `yaml:"search_mode"`
	SerialNumber int64  `yaml:"serial_number"`
	DriverDir    string `yaml:"driver_dir"`
}

type RecorderConfig struct {
	Dir string `yaml:"dir"`
}

type TimescaleConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Device.SamplingRate == 0 {
		c.Device.SamplingRate = 512
	}
	if c.Device.SearchMode == "" {
		c.Device.SearchMode = "auto"
	}
	if c.Device.DriverDir == "" {
		c.Device.DriverDir = "./libs"
	}
	if c.Policy.PollInterval == 0 {
		c.Policy.PollInterval = 100 * time.Millisecond
	}
	if c.Policy.OnSinkError == "" {
		c.Policy.OnSinkError = "retain"
	}
	if c.Recorder.Dir == "" {
		c.Recorder.Dir = "./data/recorder"
	}
	if c.Timescale.Table == "" {
		c.Timescale.Table = "sample_blocks"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
}

func (c *Config) Validate() error {
	if _, err := driver.ParseSearchMode(c.Device.SearchMode); err != nil {
		return err
	}
	if c.Device.SerialNumber < 0 {
		return fmt.Errorf("%w: serial_number must be >= 0", driver.ErrInvalidConfiguration)
	}
	switch c.Policy.OnSinkError {
	case "retain", "drop":
	default:
		return fmt.Errorf("%w: on_sink_error must be retain or drop, got %q",
			driver.ErrInvalidConfiguration, c.Policy.OnSinkError)
	}
	if c.Timescale.ConnString == "" {
		return fmt.Errorf("timescale.conn_string is required")
	}
	if c.Recorder.Dir == "" {
		return fmt.Errorf("recorder.dir is required")
	}
	return nil
}
