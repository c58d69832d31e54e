//go:build !vosk

package speech

import "fmt"

// NewVoskFactory requires the vosk build tag (and libvosk at link time).
func NewVoskFactory(modelsDir string) Factory {
	return func(lang string) (Recognizer, error) {
		return nil, fmt.Errorf("built without vosk support (rebuild with -tags vosk)")
	}
}
