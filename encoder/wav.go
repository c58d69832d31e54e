package encoder

import (
	"bytes"
	"encoding/binary"
	"sync"
)

const wavHeaderSize = 44

// WavEncoder writes a standard PCM16 WAV stream. The RIFF header is patched
// with the final sizes on Close.
type WavEncoder struct {
	buf         bytes.Buffer
	totalFrames uint64
	mu          sync.Mutex
}

func NewWav() *WavEncoder {
	e := &WavEncoder{}
	e.buf.Write(make([]byte, wavHeaderSize)) // placeholder, patched on Close
	return e
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw := make([]byte, len(block)*2)
	for i, s := range block {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	e.buf.Write(raw)
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data := e.buf.Bytes()
	dataLen := uint32(len(data) - wavHeaderSize)

	copy(data[0:4], "RIFF")
	binary.LittleEndian.PutUint32(data[4:8], 36+dataLen)
	copy(data[8:12], "WAVE")
	copy(data[12:16], "fmt ")
	binary.LittleEndian.PutUint32(data[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(data[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(data[22:24], Channels)
	binary.LittleEndian.PutUint32(data[24:28], SampleRate)
	binary.LittleEndian.PutUint32(data[28:32], SampleRate*Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(data[32:34], Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(data[34:36], BitsPerSample)
	copy(data[36:40], "data")
	binary.LittleEndian.PutUint32(data[40:44], dataLen)
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Bytes()
}

func (e *WavEncoder) TotalFrames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}
