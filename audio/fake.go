package audio

import (
	"os"
	"sync"
	"time"

	"linguavoice/encoder"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// FakeContext replays prerecorded PCM through the capture interface, either
// paced at the sample rate (realtime) or as fast as the consumer accepts.
// Once the recording is exhausted the capture keeps feeding silence until
// stopped, like a microphone in a quiet room.
type FakeContext struct {
	pcm      []byte
	realtime bool
}

// NewFakeContext reads a 16kHz mono PCM16 WAV file for replay.
func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}
	return &FakeContext{pcm: data, realtime: realtime}, nil
}

// NewFakePCMContext wraps raw PCM16 samples directly, for tests that
// generate their audio instead of reading a WAV file.
func NewFakePCMContext(pcm []byte, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{
		pcm:       f.pcm,
		realtime:  f.realtime,
		audioDone: make(chan struct{}),
		failed:    make(chan error, 1),
	}, nil
}

// FakeCapture is the replaying capture device. AudioDone closes when the
// recorded portion has been fully delivered; Fail injects a device failure.
type FakeCapture struct {
	pcm       []byte
	realtime  bool
	audioDone chan struct{}
	failed    chan error

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

// Fail simulates the device vanishing mid-capture, the way a real backend
// reports an unplugged microphone.
func (f *FakeCapture) Fail(err error) {
	select {
	case f.failed <- err:
	default:
	}
}

func (f *FakeCapture) Failed() <-chan error { return f.failed }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	// audioDone is NOT recreated here -- callers may already be waiting on
	// it. It's reset in Stop() for replay.
	go f.feed(f.stopCh, f.feedDone)
	return nil
}

// feed delivers the recording frame by frame, then silence. Non-realtime
// replay bursts the recorded frames without pacing so tests finish fast;
// the silence tail is always paced to avoid a busy loop.
func (f *FakeCapture) feed(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	const frameBytes = fakeFrameSize * fakeBytesPerFrame
	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(encoder.SampleRate)
	if !f.realtime {
		interval = time.Millisecond
	}

	pos := 0
	silence := make([]byte, frameBytes)
	drained := false
	for {
		select {
		case <-stop:
			return
		default:
		}

		f.mu.Lock()
		cb := f.cb
		f.mu.Unlock()
		if cb == nil {
			time.Sleep(time.Millisecond)
			continue
		}

		if pos < len(f.pcm) {
			end := min(pos+frameBytes, len(f.pcm))
			frame := make([]byte, end-pos)
			copy(frame, f.pcm[pos:end])
			cb(frame, uint32(len(frame)/fakeBytesPerFrame))
			pos = end
			if !f.realtime {
				continue
			}
		} else {
			if !drained {
				drained = true
				close(f.audioDone)
			}
			cb(silence, fakeFrameSize)
		}

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

func (f *FakeCapture) Stop() {
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	if f.feedDone != nil {
		<-f.feedDone
	}
	f.audioDone = make(chan struct{}) // reset for replay
}

func (f *FakeCapture) Close() {}
