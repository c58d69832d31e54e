//go:build !linux

package audio

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
	}

	capture := &malgoCapture{
		device: device,
		failed: make(chan error, 1),
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			cb := capture.callback.Load()
			if cb != nil {
				(*cb)(data, frameCount)
			}
		},
		// Fires whenever the device stops, including when the backend
		// drops it (unplugged mic, audio service restart). Our own Stop
		// and Close set stopping first, so only backend-initiated stops
		// surface as failures.
		Stop: func() {
			if capture.stopping.Load() {
				return
			}
			capture.fail(errors.New("capture device stopped unexpectedly"))
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	capture.dev = dev
	return capture, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoCapture struct {
	dev      *malgo.Device
	device   *DeviceInfo
	callback atomic.Pointer[DataCallback]
	stopping atomic.Bool
	failed   chan error
}

func (c *malgoCapture) Start() error {
	c.stopping.Store(false)
	select {
	case <-c.failed:
	default:
	}
	return c.dev.Start()
}

func (c *malgoCapture) Stop() {
	c.stopping.Store(true)
	c.dev.Stop()
}

func (c *malgoCapture) Close() {
	c.stopping.Store(true)
	c.dev.Uninit()
}

func (c *malgoCapture) fail(err error) {
	select {
	case c.failed <- err:
	default:
	}
}

func (c *malgoCapture) Failed() <-chan error { return c.failed }

func (c *malgoCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *malgoCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *malgoCapture) DeviceName() string {
	if c.device != nil {
		return c.device.Name
	}
	return "system default"
}
