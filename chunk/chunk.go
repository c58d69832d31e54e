// Package chunk persists quality-gated audio chunks to disk. Files are
// immutable once written; transcripts reference them by base filename only.
package chunk

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"linguavoice/encoder"
)

// Store writes accepted audio chunks into a single directory.
type Store struct {
	dir    string
	format string // "wav" or "flac"
}

func NewStore(dir, format string) (*Store, error) {
	if format != "wav" && format != "flac" {
		return nil, fmt.Errorf("unsupported chunk format: %q", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating audio dir: %w", err)
	}
	return &Store{dir: dir, format: format}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save encodes raw PCM16 bytes and writes them under a unique name.
// It returns the base filename for the transcript record.
func (s *Store) Save(lang string, pcm []byte) (string, error) {
	if len(pcm)%2 != 0 {
		return "", fmt.Errorf("odd pcm length %d", len(pcm))
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	enc, err := encoder.New(s.format)
	if err != nil {
		return "", err
	}
	for i := 0; i < len(samples); i += encoder.BlockSize {
		end := min(i+encoder.BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			return "", fmt.Errorf("encoding chunk: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("closing encoder: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.%s",
		lang,
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		s.format)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, enc.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing chunk: %w", err)
	}
	return name, nil
}
