//go:build windows

package driver

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	dllName32 = "GenericDeviceInterfaceDLL.dll"
	dllName64 = "GenericDeviceInterfaceDLL_x64.dll"
)

type windowsDriver struct {
	dll *windows.DLL

	procInit        *windows.Proc
	procDeviceInfo  *windows.Proc
	procChannelInfo *windows.Proc
	procStart       *windows.Proc
	procStop        *windows.Proc
	procAuthWindow  *windows.Proc

	// cb is the stdcall thunk handed to the driver; it stays registered for
	// the lifetime of the connection. One adapter per native connection.
	cb      uintptr
	deliver DeliveryFunc
}

// Load selects the driver artifact matching this process's pointer width
// and binds the exported entry points.
func Load(dir string) (Driver, error) {
	name := dllName32
	if unsafe.Sizeof(uintptr(0)) == 8 {
		name = dllName64
	}
	dll, err := windows.LoadDLL(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDriverLoad, name, err)
	}

	d := &windowsDriver{dll: dll}
	for _, sym := range []struct {
		name string
		proc **windows.Proc
	}{
		{"InitGenericDevice", &d.procInit},
		{"GetDeviceInfo", &d.procDeviceInfo},
		{"GetChannelInfo", &d.procChannelInfo},
		{"StartGenericDevice", &d.procStart},
		{"StopGenericDevice", &d.procStop},
		{"ShowAuthenticationWindow", &d.procAuthWindow},
	} {
		p, err := dll.FindProc(sym.name)
		if err != nil {
			dll.Release()
			return nil, fmt.Errorf("%w: symbol %s: %v", ErrDriverLoad, sym.name, err)
		}
		*sym.proc = p
	}
	return d, nil
}

func (d *windowsDriver) Init(cb DeliveryFunc, mode SearchMode, serial int64) int {
	d.deliver = cb
	if d.cb == 0 {
		d.cb = windows.NewCallback(d.onDeliver)
	}
	args := append([]uintptr{d.cb, uintptr(mode)}, serialArgs(serial)...)
	ret, _, _ := d.procInit.Call(args...)
	return int(int32(ret))
}

// onDeliver runs on the driver's delivery thread. Its only job is to copy
// the flat native buffer into owned memory and hand it off; the registered
// DeliveryFunc owns everything past this point.
func (d *windowsDriver) onDeliver(nSamples, nChannels, data uintptr) uintptr {
	n := int(nSamples) * int(nChannels)
	if n <= 0 || data == 0 {
		return 0
	}
	out := make([]float32, n)
	copy(out, unsafe.Slice((*float32)(unsafe.Pointer(data)), n))
	d.deliver(int(nSamples), int(nChannels), out)
	return 0
}

func (d *windowsDriver) DeviceInfo(out *DeviceInfoRecord) bool {
	ret, _, _ := d.procDeviceInfo.Call(uintptr(unsafe.Pointer(out)))
	return ret != 0
}

func (d *windowsDriver) ChannelInfo(index int, out *ChannelInfoRecord) bool {
	ret, _, _ := d.procChannelInfo.Call(uintptr(index), uintptr(unsafe.Pointer(out)))
	return ret != 0
}

func (d *windowsDriver) Start(rate *uint32) int {
	ret, _, _ := d.procStart.Call(uintptr(unsafe.Pointer(rate)))
	return int(int32(ret))
}

func (d *windowsDriver) Stop() int {
	ret, _, _ := d.procStop.Call()
	return int(int32(ret))
}

func (d *windowsDriver) ShowAuthenticationWindow() int {
	ret, _, _ := d.procAuthWindow.Call()
	return int(int32(ret))
}

var _ Driver = (*windowsDriver)(nil)
