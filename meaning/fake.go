package meaning

import (
	"context"
	"sync"
)

// FakeLookup serves canned meanings for tests and the offline fake pipeline.
type FakeLookup struct {
	mu       sync.Mutex
	meanings map[string]string
	err      error
	calls    []string
}

func NewFakeLookup(meanings map[string]string) *FakeLookup {
	if meanings == nil {
		meanings = make(map[string]string)
	}
	return &FakeLookup{meanings: meanings}
}

// FailWith makes every subsequent lookup return err.
func (f *FakeLookup) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeLookup) Meaning(_ context.Context, word, language string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, language+":"+word)
	if f.err != nil {
		return "", f.err
	}
	return f.meanings[word], nil
}

// Calls returns the "language:word" keys looked up so far.
func (f *FakeLookup) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
