//go:build linux

package audio

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jfreymuth/pulse"
)

const (
	// recordLatency is the requested delivery granularity in seconds. 50ms
	// at 16kHz keeps each callback well under the 3s chunk window.
	recordLatency = 0.05

	// staleAfter is how long the stream may go without delivering samples
	// before the capture is declared dead. PulseAudio pushes data
	// continuously while a record stream runs, silence included, so a
	// stalled writer means the source is gone.
	staleAfter = 5 * time.Second
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}
	devices := make([]DeviceInfo, 0, len(sources))
	for _, s := range sources {
		devices = append(devices, DeviceInfo{ID: s.ID(), Name: s.Name()})
	}
	return devices, nil
}

func (p *pulseContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	return &pulseCapture{
		client: p.client,
		device: device,
		config: config,
		failed: make(chan error, 1),
	}, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

type pulseCapture struct {
	client   *pulse.Client
	device   *DeviceInfo
	config   CaptureConfig
	callback atomic.Pointer[DataCallback]
	failed   chan error
	lastData atomic.Int64 // unix nanos of the most recent delivery

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (c *pulseCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop a failure left over from a previous run.
	select {
	case <-c.failed:
	default:
	}

	// Samples pass through unscaled. The quality gate's energy thresholds
	// assume raw device levels, so no software gain is applied here.
	writer := pulse.Int16Writer(func(buf []int16) (int, error) {
		c.lastData.Store(time.Now().UnixNano())
		if len(buf) == 0 {
			return 0, nil
		}
		cb := c.callback.Load()
		if cb == nil {
			return len(buf), nil
		}
		data := make([]byte, len(buf)*2)
		for i, s := range buf {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
		}
		(*cb)(data, uint32(len(buf)))
		return len(buf), nil
	})

	opts := []pulse.RecordOption{
		pulse.RecordMono,
		pulse.RecordSampleRate(int(c.config.SampleRate)),
		pulse.RecordLatency(recordLatency),
	}
	if c.device != nil {
		if source, err := c.client.SourceByID(c.device.ID); err == nil && source != nil {
			opts = append(opts, pulse.RecordSource(source))
		}
	}

	stream, err := c.client.NewRecord(writer, opts...)
	if err != nil {
		return fmt.Errorf("pulse record: %w", err)
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.lastData.Store(time.Now().UnixNano())

	stopCh := c.stop
	go func() {
		defer close(c.done)
		stream.Start()
		<-stopCh
		stream.Stop()
		stream.Close()
	}()
	go c.watch(stopCh)

	return nil
}

// watch declares the capture failed when sample delivery stalls. It exits
// on an intentional Stop without signalling.
func (c *pulseCapture) watch(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			last := time.Unix(0, c.lastData.Load())
			if time.Since(last) > staleAfter {
				c.fail(fmt.Errorf("pulse capture on %s: no samples for %s", c.DeviceName(), staleAfter))
				return
			}
		}
	}
}

func (c *pulseCapture) fail(err error) {
	select {
	case c.failed <- err:
	default:
	}
}

func (c *pulseCapture) Failed() <-chan error { return c.failed }

func (c *pulseCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return
	}
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	<-c.done
}

func (c *pulseCapture) Close() {
	c.Stop()
}

func (c *pulseCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *pulseCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *pulseCapture) DeviceName() string {
	if c.device != nil {
		return c.device.Name
	}
	return "system default"
}
