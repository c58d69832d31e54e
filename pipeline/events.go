package pipeline

// EventSink abstracts the display layer so the console frontend and tests
// receive the same pipeline events.
type EventSink interface {
	ListeningStart(languages []string, device string)
	ListeningStop(transcripts int)
	ChunkLevel(rms, quality float64)
	Transcript(language, text string)
	WordsLearned(language string, newWords, oovWords []string)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) ListeningStart([]string, string)         {}
func (NopSink) ListeningStop(int)                       {}
func (NopSink) ChunkLevel(float64, float64)             {}
func (NopSink) Transcript(string, string)               {}
func (NopSink) WordsLearned(string, []string, []string) {}
