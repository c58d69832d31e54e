package audio

import "strings"

const WAVHeaderSize = 44

// btKeywords flags capture devices that are likely Bluetooth headsets.
// Bluetooth mics typically fall back to a low-bitrate handsfree codec while
// recording, which depresses the RMS energy and smears the zero-crossing
// profile the quality gate scores chunks on. The picker warns about them so
// users understand why gated quality drops on such a device.
var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

// CaptureDevice is one open capture stream. Failed reports asynchronous
// device loss (unplugged mic, dead audio server) observed between Start and
// Stop; at most one error is delivered per Start. An intentional Stop never
// signals Failed.
type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
	Failed() <-chan error
}
