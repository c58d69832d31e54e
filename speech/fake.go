package speech

import "sync"

// FakeRecognizer emits a scripted sequence of finals, one every `every`
// frames, for pipeline and pool tests.
type FakeRecognizer struct {
	lang  string
	every int

	mu     sync.Mutex
	script []*Utterance
	next   int
	frames int
	err    error
	closed bool
}

// NewFake returns a recognizer for lang that finalizes the next scripted
// utterance after each `every` fed frames. A nil script never finalizes.
func NewFake(lang string, every int, script ...*Utterance) *FakeRecognizer {
	if every <= 0 {
		every = 1
	}
	return &FakeRecognizer{lang: lang, every: every, script: script}
}

// ScriptedUtterance builds an utterance with uniform word confidence.
func ScriptedUtterance(text string, words []string, conf float64) *Utterance {
	u := &Utterance{Text: text}
	for _, w := range words {
		u.Words = append(u.Words, Word{Text: w, Conf: conf})
	}
	return u
}

// FailWith makes every subsequent Feed return err.
func (f *FakeRecognizer) FailWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *FakeRecognizer) Language() string { return f.lang }

func (f *FakeRecognizer) Feed(frame []byte) (*Utterance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.frames++
	if f.frames%f.every != 0 || f.next >= len(f.script) {
		return nil, nil
	}
	utt := f.script[f.next]
	f.next++
	return utt, nil
}

func (f *FakeRecognizer) Reset() {
	f.mu.Lock()
	f.frames = 0
	f.mu.Unlock()
}

func (f *FakeRecognizer) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// Closed reports whether Close was called (test helper).
func (f *FakeRecognizer) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
