package ports

import "time"

type Policy struct {
	// PollInterval is the host polling cadence. The ingest buffer grows
	// without bound between polls, so the interval also bounds memory.
	PollInterval time.Duration `yaml:"poll_interval"`

	OnSinkError string `yaml:"on_sink_error"` // "retain", "drop"
}
