package nexus

import (
	"errors"
	"testing"

	"github.com/avanlier/NexusEdge/internal/domain"
	"github.com/avanlier/NexusEdge/internal/driver"
)

// fakeDriver scripts the native entry points so the negotiation sequence
// can be exercised without a device.
type fakeDriver struct {
	initRet    int
	startRet   int
	stopRet    int
	authRet    int
	deviceOK   bool
	failChanAt int // index of a channel query that returns false, -1 for none

	device   driver.DeviceInfoRecord
	channels []driver.ChannelInfoRecord

	cb         driver.DeliveryFunc
	initMode   driver.SearchMode
	initSerial int64
	startRate  uint32 // nonzero: rate the driver rewrites the request to
	authShown  bool
	stopCalls  int
}

func newFakeDriver(nchan int) *fakeDriver {
	d := &fakeDriver{deviceOK: true, failChanAt: -1}
	copy(d.device.Name[:], "NeXus-4")
	copy(d.device.SerialNumber[:], "0401230042")
	copy(d.device.ConnectionType[:], "usb")
	d.device.NumberOfChannels = uint32(nchan)
	for i := 0; i < nchan; i++ {
		var ch driver.ChannelInfoRecord
		ch.Name[0] = byte('A' + i)
		ch.SampleRate = 512
		ch.TypeID = 1
		d.channels = append(d.channels, ch)
	}
	return d
}

func (d *fakeDriver) Init(cb driver.DeliveryFunc, mode driver.SearchMode, serial int64) int {
	d.cb = cb
	d.initMode = mode
	d.initSerial = serial
	return d.initRet
}

func (d *fakeDriver) DeviceInfo(out *driver.DeviceInfoRecord) bool {
	if !d.deviceOK {
		return false
	}
	*out = d.device
	return true
}

func (d *fakeDriver) ChannelInfo(index int, out *driver.ChannelInfoRecord) bool {
	if index == d.failChanAt {
		return false
	}
	*out = d.channels[index]
	return true
}

func (d *fakeDriver) Start(rate *uint32) int {
	if d.startRet == 0 && d.startRate != 0 {
		*rate = d.startRate
	}
	return d.startRet
}

func (d *fakeDriver) Stop() int {
	d.stopCalls++
	return d.stopRet
}

func (d *fakeDriver) ShowAuthenticationWindow() int {
	d.authShown = true
	return d.authRet
}

func TestOpenQueriesDescriptors(t *testing.T) {
	drv := newFakeDriver(3)

	a, err := Open(Config{SamplingRate: 512, SearchMode: driver.SearchUSB, SerialNumber: 7}, drv, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if drv.initMode != driver.SearchUSB || drv.initSerial != 7 {
		t.Fatalf("init got mode=%v serial=%d", drv.initMode, drv.initSerial)
	}

	dev := a.Device()
	if dev.Name != "NeXus-4" || dev.NumberOfChannels != 3 {
		t.Fatalf("unexpected device: %+v", dev)
	}
	if dev.Serial.TypeCode != "0401" {
		t.Fatalf("serial not parsed: %+v", dev.Serial)
	}

	chans := a.Channels()
	if len(chans) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(chans))
	}
	if chans[0].Name != "A" || chans[1].Name != "B" || chans[2].Name != "C" {
		t.Fatalf("channel order broken: %+v", chans)
	}
	if chans[0].Unit != "uV" || chans[0].Class != "voltage" {
		t.Fatalf("unit/class not resolved: %+v", chans[0])
	}
}

func TestOpenRejectsInvalidSearchMode(t *testing.T) {
	drv := newFakeDriver(1)

	_, err := Open(Config{SearchMode: driver.SearchMode(9)}, drv, nil)
	if !errors.Is(err, driver.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if drv.cb != nil {
		t.Fatalf("init must not run with an invalid search mode")
	}
}

func TestOpenInitErrorCode(t *testing.T) {
	drv := newFakeDriver(1)
	drv.initRet = -1

	_, err := Open(Config{}, drv, nil)
	var cerr *driver.ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if cerr.Code != 1 || cerr.Message != "No valid Device" || cerr.Stage != driver.StageInit {
		t.Fatalf("unexpected error: %+v", cerr)
	}
}

func TestOpenAuthenticationRequired(t *testing.T) {
	drv := newFakeDriver(1)
	drv.initRet = driver.AuthRequiredCode
	drv.authRet = 0

	a, err := Open(Config{}, drv, nil)
	if err != nil {
		t.Fatalf("auth success should proceed to initialized: %v", err)
	}
	if !drv.authShown {
		t.Fatalf("authentication window was not shown")
	}
	if a.Device().Name != "NeXus-4" {
		t.Fatalf("query did not run after auth")
	}
}

func TestOpenAuthenticationFailed(t *testing.T) {
	drv := newFakeDriver(1)
	drv.initRet = driver.AuthRequiredCode
	drv.authRet = 1

	_, err := Open(Config{}, drv, nil)
	if !errors.Is(err, driver.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestOpenDeviceQueryFailure(t *testing.T) {
	drv := newFakeDriver(1)
	drv.deviceOK = false

	if _, err := Open(Config{}, drv, nil); !errors.Is(err, driver.ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
}

func TestOpenChannelQueryFailure(t *testing.T) {
	drv := newFakeDriver(3)
	drv.failChanAt = 1

	if _, err := Open(Config{}, drv, nil); !errors.Is(err, driver.ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
}

func TestOpenUnknownChannelType(t *testing.T) {
	drv := newFakeDriver(2)
	drv.channels[1].TypeID = 7

	if _, err := Open(Config{}, drv, nil); !errors.Is(err, domain.ErrUnknownChannelType) {
		t.Fatalf("expected ErrUnknownChannelType, got %v", err)
	}
}

func TestOpenStartFailure(t *testing.T) {
	drv := newFakeDriver(1)
	drv.startRet = -4

	_, err := Open(Config{}, drv, nil)
	var cerr *driver.ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if cerr.Stage != driver.StageStart || cerr.Code != 4 {
		t.Fatalf("unexpected error: %+v", cerr)
	}
}

func TestOpenNegotiatedRate(t *testing.T) {
	drv := newFakeDriver(1)
	drv.startRate = 256

	a, err := Open(Config{SamplingRate: 512}, drv, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if a.SampleRate() != 256 {
		t.Fatalf("expected negotiated rate 256, got %d", a.SampleRate())
	}
}

func TestPollConcatenatesDeliveries(t *testing.T) {
	drv := newFakeDriver(2)
	a, err := Open(Config{}, drv, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	drv.cb(2, 2, []float32{1, 2, 3, 4})
	drv.cb(1, 2, []float32{5, 6})
	drv.cb(3, 2, []float32{7, 8, 9, 10, 11, 12})

	blk, ok := a.Poll()
	if !ok {
		t.Fatalf("expected pending data")
	}
	if blk.Rows != 6 || blk.Cols != 2 {
		t.Fatalf("expected 6x2, got %dx%d", blk.Rows, blk.Cols)
	}
	if blk.Channels[0] != "A" || blk.Channels[1] != "B" {
		t.Fatalf("block not tagged with channel names: %v", blk.Channels)
	}
	for i, want := range []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} {
		if blk.Data[i] != want {
			t.Fatalf("value %d: got %f, want %f", i, blk.Data[i], want)
		}
	}
}

func TestPollEmptyIsIdempotent(t *testing.T) {
	drv := newFakeDriver(1)
	a, err := Open(Config{}, drv, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for i := 0; i < 3; i++ {
		if blk, ok := a.Poll(); ok || blk != nil {
			t.Fatalf("poll %d: expected no data, got %+v", i, blk)
		}
	}

	drv.cb(1, 1, []float32{9})
	if _, ok := a.Poll(); !ok {
		t.Fatalf("delivery after empty polls should be visible")
	}
	if _, ok := a.Poll(); ok {
		t.Fatalf("second poll should be empty again")
	}
}

func TestCloseStopsDriverOnce(t *testing.T) {
	drv := newFakeDriver(1)
	a, err := Open(Config{}, drv, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if drv.stopCalls != 1 {
		t.Fatalf("expected exactly one stop call, got %d", drv.stopCalls)
	}
}

func TestCloseReportsStopCodeWithoutFailing(t *testing.T) {
	drv := newFakeDriver(1)
	drv.stopRet = -4

	a, err := Open(Config{}, drv, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close should be best-effort, got %v", err)
	}
}
