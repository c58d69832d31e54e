package pipeline

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"linguavoice/audio"
	"linguavoice/chunk"
	"linguavoice/langid"
	"linguavoice/speech"
	"linguavoice/store"
	"linguavoice/vocab"
)

// scriptCapture feeds a fixed set of frames synchronously on Start, so a
// Start/Stop pair processes exactly these frames and nothing else.
type scriptCapture struct {
	frames [][]byte

	mu sync.Mutex
	cb audio.DataCallback
}

func (c *scriptCapture) SetCallback(cb audio.DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *scriptCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

func (c *scriptCapture) Start() error {
	c.mu.Lock()
	cb := c.cb
	c.mu.Unlock()
	if cb == nil {
		return nil
	}
	for _, f := range c.frames {
		cb(f, uint32(len(f)/2))
	}
	return nil
}

func (c *scriptCapture) Stop()                {}
func (c *scriptCapture) Close()               {}
func (c *scriptCapture) DeviceName() string   { return "script" }
func (c *scriptCapture) Failed() <-chan error { return nil }

type failCapture struct{ scriptCapture }

func (c *failCapture) Start() error { return errors.New("device gone") }

// vanishCapture delivers its frames and then reports the device lost, like
// a microphone unplugged mid-stream.
type vanishCapture struct {
	scriptCapture
	failed chan error
}

func newVanishCapture(frames [][]byte) *vanishCapture {
	return &vanishCapture{
		scriptCapture: scriptCapture{frames: frames},
		failed:        make(chan error, 1),
	}
}

func (c *vanishCapture) Start() error {
	if err := c.scriptCapture.Start(); err != nil {
		return err
	}
	c.failed <- errors.New("device unplugged")
	return nil
}

func (c *vanishCapture) Failed() <-chan error { return c.failed }

// recordingSink captures pipeline events for assertions.
type recordingSink struct {
	mu          sync.Mutex
	transcripts []string
	newWords    []string
	oovWords    []string
	stops       int
}

func (s *recordingSink) ListeningStart([]string, string) {}
func (s *recordingSink) ChunkLevel(float64, float64)     {}

func (s *recordingSink) ListeningStop(int) {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
}

func (s *recordingSink) Transcript(language, text string) {
	s.mu.Lock()
	s.transcripts = append(s.transcripts, language+":"+text)
	s.mu.Unlock()
}

func (s *recordingSink) WordsLearned(_ string, newWords, oovWords []string) {
	s.mu.Lock()
	s.newWords = append(s.newWords, newWords...)
	s.oovWords = append(s.oovWords, oovWords...)
	s.mu.Unlock()
}

// squarePCM builds a square wave: RMS equals the amplitude, and the
// half-period sets the zero-crossing rate.
func squarePCM(amplitude int16, halfPeriod, samples int) []byte {
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude
		if (i/halfPeriod)%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}

// splitFrames slices pcm into fixed-size capture frames.
func splitFrames(pcm []byte, frameBytes int) [][]byte {
	var out [][]byte
	for i := 0; i < len(pcm); i += frameBytes {
		end := i + frameBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		out = append(out, pcm[i:end])
	}
	return out
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := store.Init(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	db     *sql.DB
	chunks *chunk.Store
	sink   *recordingSink
	pipe   *Pipeline
}

// newFixture builds a pipeline over 12 frames of pcm with one scripted
// recognizer per language, each finalizing after the last frame.
func newFixture(t *testing.T, pcm []byte, recs ...*speech.FakeRecognizer) *fixture {
	t.Helper()
	db := setupTestDB(t)

	chunks, err := chunk.NewStore(t.TempDir(), "wav")
	if err != nil {
		t.Fatal(err)
	}

	byLang := make(map[string]*speech.FakeRecognizer, len(recs))
	var langs []string
	for _, r := range recs {
		byLang[r.Language()] = r
		langs = append(langs, r.Language())
	}
	pool, err := speech.NewPool(func(lang string) (speech.Recognizer, error) {
		return byLang[lang], nil
	}, langs)
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	pipe := New(Config{
		Capture:     &scriptCapture{frames: splitFrames(pcm, 8000)},
		Recognizers: pool,
		Validator:   langid.NewValidator(langid.NewDetector()),
		Chunks:      chunks,
		DB:          db,
		Tracker:     vocab.NewTracker(db, vocab.NewKeyedMutex()),
		Sink:        sink,
		UserID:      "u1",
	})
	pipe.Now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{db: db, chunks: chunks, sink: sink, pipe: pipe}
}

func runToCompletion(t *testing.T, p *Pipeline) {
	t.Helper()
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	p.Stop()
	if got := p.State(); got != Stopped {
		t.Fatalf("state after stop = %v, want stopped", got)
	}
}

func TestQuietChunkTranscriptWithoutAudioFile(t *testing.T) {
	// Amplitude 50 is well below the energy threshold: the chunk is never
	// persisted, but the recognizer final still becomes a transcript.
	pcm := squarePCM(50, 16, 3*16000)
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.9))
	fx := newFixture(t, pcm, es)

	runToCompletion(t, fx.pipe)

	list, err := store.ListTranscripts(fx.db, "u1", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d transcripts, want 1", len(list))
	}
	if list[0].AudioFile != "" {
		t.Errorf("audio_file = %q, want empty for ungated chunk", list[0].AudioFile)
	}
	if list[0].Language != "es" || list[0].Text != "hola amigo" {
		t.Errorf("transcript = %+v", list[0])
	}

	files, _ := os.ReadDir(fx.chunks.Dir())
	if len(files) != 0 {
		t.Errorf("chunk dir holds %d files, want 0", len(files))
	}
}

func TestCrossLanguageArbitration(t *testing.T) {
	// Both recognizers finalize the same Spanish text. Only the es final
	// survives validation; the en final is rejected by the classifier.
	pcm := squarePCM(1000, 16, 3*16000)
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.9))
	en := speech.NewFake("en", 12,
		speech.ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.9))
	fx := newFixture(t, pcm, en, es)

	runToCompletion(t, fx.pipe)

	list, err := store.ListTranscripts(fx.db, "u1", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d transcripts, want 1", len(list))
	}
	if list[0].Language != "es" {
		t.Errorf("language = %q, want es", list[0].Language)
	}
}

func TestLoudChunkPersistedAndReferenced(t *testing.T) {
	pcm := squarePCM(1000, 16, 3*16000)
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("el perro grande", []string{"el", "perro", "grande"}, 0.9))
	fx := newFixture(t, pcm, es)

	runToCompletion(t, fx.pipe)

	list, _ := store.ListTranscripts(fx.db, "u1", "", 10)
	if len(list) != 1 {
		t.Fatalf("got %d transcripts, want 1", len(list))
	}
	if list[0].AudioFile == "" {
		t.Fatal("transcript has no audio_file for a gated chunk")
	}
	if _, err := os.Stat(filepath.Join(fx.chunks.Dir(), list[0].AudioFile)); err != nil {
		t.Errorf("referenced chunk missing: %v", err)
	}
}

func TestTranscriptFeedsVocabulary(t *testing.T) {
	pcm := squarePCM(1000, 16, 3*16000)
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("hola zorro", []string{"hola", "zorro"}, 0.9))
	fx := newFixture(t, pcm, es)

	runToCompletion(t, fx.pipe)

	if e, _ := store.GetVocabularyEntry(fx.db, "u1", "hola", "es"); e == nil {
		t.Error("hola not tracked")
	}
	oov, _ := store.ListOOV(fx.db, "u1", "es")
	if len(oov) != 1 || oov[0].Word != "zorro" {
		t.Errorf("oov = %+v, want zorro", oov)
	}

	fx.sink.mu.Lock()
	defer fx.sink.mu.Unlock()
	if len(fx.sink.newWords) != 2 {
		t.Errorf("sink new words = %v", fx.sink.newWords)
	}
}

func TestActiveLanguageFilters(t *testing.T) {
	pcm := squarePCM(1000, 16, 3*16000)
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.9))
	fx := newFixture(t, pcm, es)
	fx.pipe.SetActiveLanguage("en")

	runToCompletion(t, fx.pipe)

	list, _ := store.ListTranscripts(fx.db, "u1", "", 10)
	if len(list) != 0 {
		t.Errorf("got %d transcripts with inactive language, want 0", len(list))
	}
}

func TestActiveUserRedirect(t *testing.T) {
	pcm := squarePCM(1000, 16, 3*16000)
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.9))
	fx := newFixture(t, pcm, es)
	fx.pipe.SetActiveUser("u2")

	runToCompletion(t, fx.pipe)

	if list, _ := store.ListTranscripts(fx.db, "u1", "", 10); len(list) != 0 {
		t.Errorf("u1 received %d transcripts after redirect", len(list))
	}
	if list, _ := store.ListTranscripts(fx.db, "u2", "", 10); len(list) != 1 {
		t.Errorf("u2 received %d transcripts, want 1", len(list))
	}
}

func TestStartIdempotentAndStopSafe(t *testing.T) {
	pcm := squarePCM(1000, 16, 16000)
	es := speech.NewFake("es", 1000)
	fx := newFixture(t, pcm, es)

	if err := fx.pipe.Start(); err != nil {
		t.Fatal(err)
	}
	if got := fx.pipe.State(); got != Listening {
		t.Fatalf("state = %v, want listening", got)
	}
	if err := fx.pipe.Start(); err != nil {
		t.Errorf("second start errored: %v", err)
	}

	fx.pipe.Stop()
	fx.pipe.Stop() // no-op

	if got := fx.pipe.State(); got != Stopped {
		t.Errorf("state = %v, want stopped", got)
	}
	fx.sink.mu.Lock()
	defer fx.sink.mu.Unlock()
	if fx.sink.stops != 1 {
		t.Errorf("stop events = %d, want 1", fx.sink.stops)
	}
}

func TestCaptureFailureLeavesStopped(t *testing.T) {
	fx := newFixture(t, nil, speech.NewFake("es", 1000))
	fx.pipe.capture = &failCapture{}

	if err := fx.pipe.Start(); err == nil {
		t.Fatal("expected capture start error")
	}
	if got := fx.pipe.State(); got != Stopped {
		t.Errorf("state = %v, want stopped", got)
	}
	// Restart with a working device still possible.
	fx.pipe.capture = &scriptCapture{}
	if err := fx.pipe.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	fx.pipe.Stop()
}

func TestDeviceLossMidStreamStopsPipeline(t *testing.T) {
	pcm := squarePCM(1000, 16, 3*16000)
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.9))
	fx := newFixture(t, pcm, es)
	fx.pipe.capture = newVanishCapture(splitFrames(pcm, 8000))

	if err := fx.pipe.Start(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fx.pipe.State() != Stopped {
		if time.Now().After(deadline) {
			t.Fatalf("state = %v, want stopped after device loss", fx.pipe.State())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Audio captured before the failure is still transcribed.
	list, _ := store.ListTranscripts(fx.db, "u1", "", 10)
	if len(list) != 1 {
		t.Errorf("got %d transcripts, want 1 from frames ahead of the failure", len(list))
	}
	fx.sink.mu.Lock()
	stops := fx.sink.stops
	fx.sink.mu.Unlock()
	if stops != 1 {
		t.Errorf("stop events = %d, want 1", stops)
	}

	// A later Stop is a no-op and a fresh device restarts cleanly.
	fx.pipe.Stop()
	fx.pipe.capture = &scriptCapture{}
	if err := fx.pipe.Start(); err != nil {
		t.Fatalf("restart after device loss: %v", err)
	}
	fx.pipe.Stop()
}

func TestRecognizerErrorDoesNotStopLoop(t *testing.T) {
	pcm := squarePCM(1000, 16, 3*16000)
	bad := speech.NewFake("en", 12)
	bad.FailWith(errors.New("decoder fault"))
	es := speech.NewFake("es", 12,
		speech.ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.9))
	fx := newFixture(t, pcm, bad, es)

	runToCompletion(t, fx.pipe)

	list, _ := store.ListTranscripts(fx.db, "u1", "", 10)
	if len(list) != 1 {
		t.Errorf("got %d transcripts, want 1 despite recognizer errors", len(list))
	}
}
