package nexus

import (
	"fmt"
	"sync"

	"github.com/avanlier/NexusEdge/internal/domain"
	"github.com/avanlier/NexusEdge/internal/driver"
	"github.com/avanlier/NexusEdge/internal/ports"
)

// Config holds the acquisition parameters recognized by the device.
type Config struct {
	SamplingRate uint32
	SearchMode   driver.SearchMode
	SerialNumber int64 // 0 = any device
}

// Adapter owns one native device connection. It negotiates the connection
// sequence, caches the device and channel descriptors, and buffers delivery
// events from the driver's thread until the host polls them off.
type Adapter struct {
	drv driver.Driver
	obs ports.Observability

	device   domain.DeviceDescriptor
	channels []domain.ChannelDescriptor
	names    []string
	rate     uint32

	buf       ingestBuffer
	closeOnce sync.Once
}

// Open runs the full connect sequence synchronously: init → (auth) →
// query → start. Failure at any stage aborts construction; no partially
// connected adapter is ever returned. The caller must Close the adapter
// exactly once when streaming should stop.
func Open(cfg Config, drv driver.Driver, obs ports.Observability) (*Adapter, error) {
	if obs == nil {
		obs = noopObs{}
	}
	a := &Adapter{drv: drv, obs: obs, rate: cfg.SamplingRate}

	if err := a.connect(cfg); err != nil {
		return nil, err
	}
	if err := a.query(); err != nil {
		return nil, err
	}
	if err := a.start(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) connect(cfg Config) error {
	if cfg.SearchMode < driver.SearchAuto || cfg.SearchMode > driver.SearchBluetooth {
		return fmt.Errorf("%w: search mode %d", driver.ErrInvalidConfiguration, cfg.SearchMode)
	}
	ret := a.drv.Init(a.onDeliver, cfg.SearchMode, cfg.SerialNumber)
	switch {
	case ret == 0:
		return nil
	case ret == driver.AuthRequiredCode:
		if a.drv.ShowAuthenticationWindow() == 1 {
			return driver.ErrAuthenticationFailed
		}
		return nil
	default:
		err := driver.NewConnectionError(driver.StageInit, ret)
		a.obs.LogError("device_init_failed", err,
			ports.Field{Key: "code", Value: err.Code},
			ports.Field{Key: "search_mode", Value: cfg.SearchMode.String()})
		return err
	}
}

func (a *Adapter) query() error {
	var dev driver.DeviceInfoRecord
	if !a.drv.DeviceInfo(&dev) {
		return fmt.Errorf("%w: device info", driver.ErrQueryFailed)
	}
	a.device = dev.Descriptor()

	a.channels = make([]domain.ChannelDescriptor, 0, a.device.NumberOfChannels)
	a.names = make([]string, 0, a.device.NumberOfChannels)
	for i := 0; i < a.device.NumberOfChannels; i++ {
		var rec driver.ChannelInfoRecord
		if !a.drv.ChannelInfo(i, &rec) {
			return fmt.Errorf("%w: channel %d", driver.ErrQueryFailed, i)
		}
		ch, err := rec.Descriptor()
		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		a.channels = append(a.channels, ch)
		a.names = append(a.names, ch.Name)
	}
	return nil
}

func (a *Adapter) start() error {
	rate := a.rate
	if ret := a.drv.Start(&rate); ret != 0 {
		return driver.NewConnectionError(driver.StageStart, ret)
	}
	// the driver may adjust the requested rate
	a.rate = rate
	return nil
}

// onDeliver runs on the native delivery thread. It reshapes the flat buffer
// into an owned row-major block and appends it under the buffer lock;
// nothing else happens on the driver's thread.
func (a *Adapter) onDeliver(nSamples, nChannels int, samples []float32) {
	if nSamples <= 0 || nChannels <= 0 {
		return
	}
	blk := domain.SampleBlock{
		Rows: nSamples,
		Cols: nChannels,
		Data: make([]float64, nSamples*nChannels),
	}
	for i, v := range samples[:nSamples*nChannels] {
		blk.Data[i] = float64(v)
	}
	a.buf.append(blk)
	a.obs.IncCounter("nexus_blocks_delivered_total", 1)
}

// Poll drains everything delivered since the previous call into one
// contiguous block labeled with the channel names. It returns false when
// nothing arrived, which is a normal outcome; repeated empty polls are
// idempotent. Poll must not be called after Close.
func (a *Adapter) Poll() (*domain.SampleBlock, bool) {
	blocks := a.buf.drain()
	if len(blocks) == 0 {
		return nil, false
	}
	return domain.ConcatBlocks(a.names, blocks), true
}

func (a *Adapter) Device() domain.DeviceDescriptor { return a.device }

func (a *Adapter) Channels() []domain.ChannelDescriptor {
	out := make([]domain.ChannelDescriptor, len(a.channels))
	copy(out, a.channels)
	return out
}

// SampleRate returns the rate negotiated with the device, which may differ
// from the requested one.
func (a *Adapter) SampleRate() uint32 { return a.rate }

// PendingBlocks reports how many delivery events are waiting for a poll.
func (a *Adapter) PendingBlocks() int { return a.buf.len() }

// Close stops native streaming and renders the adapter inert. A nonzero
// stop code is reported through observability but never fails the shutdown.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		if code := a.drv.Stop(); code != 0 {
			a.obs.LogError("device_stop_failed",
				fmt.Errorf("stop returned %d: %s", code, driver.CodeMessage(code)))
		}
	})
	return nil
}

type noopObs struct{}

func (noopObs) LogInfo(string, ...ports.Field)            {}
func (noopObs) LogError(string, error, ...ports.Field)    {}
func (noopObs) LogCritical(string, error, ...ports.Field) {}
func (noopObs) IncCounter(string, float64)                {}
func (noopObs) ObserveLatency(string, float64)            {}
func (noopObs) SetGauge(string, float64)                  {}

var _ ports.BlockSource = (*Adapter)(nil)
