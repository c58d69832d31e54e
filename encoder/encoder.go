package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder turns PCM16 sample blocks into an encoded audio byte stream.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}

// New returns an encoder for the given format ("wav" or "flac").
func New(format string) (Encoder, error) {
	switch format {
	case "wav":
		return NewWav(), nil
	case "flac":
		return NewFlac()
	}
	return nil, fmt.Errorf("unknown audio format: %q", format)
}
