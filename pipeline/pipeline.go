// Package pipeline orchestrates live transcription: capture, chunk quality
// gating, per-language recognizer fan-out, utterance arbitration, transcript
// persistence and vocabulary handoff.
package pipeline

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"linguavoice/audio"
	"linguavoice/chunk"
	"linguavoice/encoder"
	"linguavoice/gate"
	"linguavoice/langid"
	"linguavoice/log"
	"linguavoice/speech"
	"linguavoice/store"
	"linguavoice/vocab"
)

const (
	chunkSeconds = 3
	chunkBytes   = chunkSeconds * encoder.SampleRate * 2

	// frameQueueCap bounds the capture-to-loop queue. A full queue drops
	// frames rather than blocking the capture callback.
	frameQueueCap = 64
)

// State of the pipeline's lifecycle.
type State int32

const (
	Stopped State = iota
	Starting
	Listening
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Listening:
		return "listening"
	case Stopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Enricher schedules asynchronous meaning lookups for newly sighted words.
// *meaning.Enricher satisfies this.
type Enricher interface {
	Enrich(userID, language string, words []string)
}

// Config wires a Pipeline. Capture, Recognizers, Validator, DB and Tracker
// are required; Chunks, Enricher and Sink are optional.
type Config struct {
	Capture     audio.CaptureDevice
	Recognizers *speech.Pool
	Validator   *langid.Validator
	Chunks      *chunk.Store
	DB          *sql.DB
	Tracker     *vocab.Tracker
	Enricher    Enricher
	Sink        EventSink
	UserID      string
}

// Pipeline is the single long-running transcription worker. All transcripts
// go to one active user at a time; Start and Stop are safe to call from any
// goroutine.
type Pipeline struct {
	capture   audio.CaptureDevice
	pool      *speech.Pool
	validator *langid.Validator
	chunks    *chunk.Store
	db        *sql.DB
	tracker   *vocab.Tracker
	enricher  Enricher
	sink      EventSink

	state    atomic.Int32
	stopFlag atomic.Bool
	frames   chan []byte
	loopDone chan struct{}

	mu         sync.Mutex
	activeUser string
	activeLang string

	// Loop-goroutine state, no locking needed.
	lastChunkFile string
	transcripts   int

	// Now is overridable in tests.
	Now func() time.Time
}

func New(cfg Config) *Pipeline {
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	return &Pipeline{
		capture:    cfg.Capture,
		pool:       cfg.Recognizers,
		validator:  cfg.Validator,
		chunks:     cfg.Chunks,
		db:         cfg.DB,
		tracker:    cfg.Tracker,
		enricher:   cfg.Enricher,
		sink:       sink,
		activeUser: cfg.UserID,
		Now:        time.Now,
	}
}

func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// SetActiveUser redirects all subsequent transcripts to userID. Safe to
// call mid-stream.
func (p *Pipeline) SetActiveUser(userID string) {
	p.mu.Lock()
	p.activeUser = userID
	p.mu.Unlock()
}

func (p *Pipeline) ActiveUser() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeUser
}

// SetActiveLanguage restricts persisted transcripts to one accepted
// language. Empty means all configured languages.
func (p *Pipeline) SetActiveLanguage(language string) {
	p.mu.Lock()
	p.activeLang = language
	p.mu.Unlock()
}

func (p *Pipeline) target() (user, language string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeUser, p.activeLang
}

// Start brings the pipeline to Listening. Calling Start while already
// Listening is a no-op. A capture failure leaves the pipeline Stopped.
func (p *Pipeline) Start() error {
	if !p.state.CompareAndSwap(int32(Stopped), int32(Starting)) {
		return nil
	}

	p.stopFlag.Store(false)
	p.frames = make(chan []byte, frameQueueCap)
	p.loopDone = make(chan struct{})
	p.lastChunkFile = ""
	p.transcripts = 0

	p.capture.SetCallback(p.onFrame)
	if err := p.capture.Start(); err != nil {
		p.capture.ClearCallback()
		p.state.Store(int32(Stopped))
		return fmt.Errorf("starting capture: %w", err)
	}

	// Listening is published before the loop spawns so a failure observed
	// on the very first select can win the Listening->Stopping transition.
	p.state.Store(int32(Listening))
	go p.loop()

	langs := p.pool.Languages()
	log.PipelineStart(langs, p.capture.DeviceName())
	p.sink.ListeningStart(langs, p.capture.DeviceName())
	return nil
}

// Stop drains the pipeline and returns once the loop has exited. Finals
// already queued ahead of the stop signal are still validated and
// persisted. Safe to call in any state.
func (p *Pipeline) Stop() {
	if !p.state.CompareAndSwap(int32(Listening), int32(Stopping)) {
		return
	}

	p.stopFlag.Store(true)
	// Sentinel wakes the loop's blocking receive. If the queue is full the
	// loop is awake anyway and will observe the flag.
	select {
	case p.frames <- nil:
	default:
	}

	p.capture.Stop()
	p.capture.ClearCallback()
	<-p.loopDone

	p.state.Store(int32(Stopped))
	log.PipelineStop(p.transcripts)
	p.sink.ListeningStop(p.transcripts)
}

// onFrame runs on the capture thread. It must never block.
func (p *Pipeline) onFrame(data []byte, _ uint32) {
	if p.stopFlag.Load() || len(data) == 0 {
		return
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	select {
	case p.frames <- frame:
	default:
		log.Debugf("frame queue full, dropping %d bytes", len(frame))
	}
}

// loop is the single consumer of the frame queue, preserving capture order
// for every recognizer. Losing the capture device mid-stream is fatal: the
// loop tears the pipeline down to Stopped instead of listening forever on
// a dead source.
func (p *Pipeline) loop() {
	defer close(p.loopDone)

	buf := make([]byte, 0, chunkBytes)
	for {
		var frame []byte
		select {
		case frame = <-p.frames:
		default:
			// Queue is empty. Frames already captured take priority over a
			// failure report, so buffered audio is never discarded.
			select {
			case frame = <-p.frames:
			case err := <-p.capture.Failed():
				p.fatal(err)
				return
			}
		}
		if frame == nil {
			return
		}

		buf = append(buf, frame...)
		if len(buf) >= chunkBytes {
			p.flushChunk(buf)
			buf = buf[:0]
		}

		finals, errs := p.pool.Feed(frame)
		for _, err := range errs {
			log.Debugf("recognizer error, frame dropped: %v", err)
		}
		for _, f := range finals {
			p.handleFinal(f)
		}

		if p.stopFlag.Load() && len(p.frames) == 0 {
			return
		}
	}
}

// fatal tears the pipeline down from inside the loop after the capture
// device reported failure. If an external Stop already won the
// Listening->Stopping transition it owns the teardown; the loop just
// exits and lets it finish.
func (p *Pipeline) fatal(err error) {
	log.Errorf("capture device failed, stopping: %v", err)
	if !p.state.CompareAndSwap(int32(Listening), int32(Stopping)) {
		return
	}
	p.stopFlag.Store(true)
	p.capture.Stop()
	p.capture.ClearCallback()
	log.PipelineStop(p.transcripts)
	p.sink.ListeningStop(p.transcripts)
	p.state.Store(int32(Stopped))
}

// flushChunk gates one accumulated chunk and persists it when it carries
// enough speech. The saved filename becomes the weak audio reference for
// subsequent transcripts.
func (p *Pipeline) flushChunk(pcm []byte) {
	rep := gate.Assess(pcm)
	p.sink.ChunkLevel(rep.RMS, rep.Quality)

	if !rep.HasSpeech || rep.Quality < gate.MinQuality {
		log.Debugf("chunk dropped: rms=%.0f quality=%.2f", rep.RMS, rep.Quality)
		return
	}
	if p.chunks == nil {
		return
	}

	_, lang := p.target()
	if lang == "" {
		lang = "multi"
	}
	name, err := p.chunks.Save(lang, pcm)
	if err != nil {
		log.Errorf("saving audio chunk: %v", err)
		return
	}
	p.lastChunkFile = name
}

// handleFinal arbitrates one recognizer final and, when accepted, persists
// the transcript and hands it to the vocabulary tracker.
func (p *Pipeline) handleFinal(f speech.Final) {
	v := p.validator.Validate(f.Utterance.Text, f.Utterance.Confidences(), f.Language)
	if !v.Accepted {
		log.Rejection(f.Language, v.Reason, f.Utterance.Text)
		return
	}

	user, activeLang := p.target()
	if activeLang != "" && v.Language != activeLang {
		log.Rejection(v.Language, "inactive_language", f.Utterance.Text)
		return
	}

	t := &store.Transcript{
		UserID:    user,
		Timestamp: p.Now(),
		Language:  v.Language,
		Text:      f.Utterance.Text,
		AudioFile: p.lastChunkFile,
	}
	if _, err := store.InsertTranscript(p.db, t); err != nil {
		log.Errorf("persisting transcript: %v", err)
		return
	}
	p.transcripts++
	log.Transcript(v.Language, t.Text, t.AudioFile)
	p.sink.Transcript(v.Language, t.Text)

	res, err := p.tracker.Process(user, t.Text, v.Language)
	if err != nil {
		log.Errorf("tracking vocabulary: %v", err)
		return
	}
	if len(res.NewWords) > 0 {
		p.sink.WordsLearned(v.Language, res.NewWords, res.OOVWords)
		if p.enricher != nil {
			p.enricher.Enrich(user, v.Language, res.NewWords)
		}
	}
}
