// Package speech wraps streaming speech recognition engines. One recognizer
// instance exists per configured language; every instance receives every
// captured frame and independently decides when it has a finalized utterance.
package speech

import "fmt"

// Word is one recognized token with its confidence.
type Word struct {
	Text string
	Conf float64 // in [0,1]
}

// Utterance is a finalized recognizer output. It exists only between the
// engine's endpoint decision and validation.
type Utterance struct {
	Text  string
	Words []Word
}

// Confidences returns the per-word confidence values.
func (u *Utterance) Confidences() []float64 {
	out := make([]float64, len(u.Words))
	for i, w := range u.Words {
		out[i] = w.Conf
	}
	return out
}

// Recognizer is a stateful streaming recognition engine for one language.
// Feed accepts one audio frame and returns a non-nil Utterance when the
// engine's endpoint heuristic fired. An empty-text final means "no
// utterance", not an error. Implementations are not safe for concurrent
// Feed calls; the pipeline serializes frames.
type Recognizer interface {
	Language() string
	Feed(frame []byte) (*Utterance, error)
	Reset()
	Close()
}

// Factory creates a recognizer for a language. Model loading is a one-time
// startup cost; a load failure is fatal to process startup.
type Factory func(lang string) (Recognizer, error)

// Final pairs a finalized utterance with the language of the recognizer
// that produced it.
type Final struct {
	Language  string
	Utterance *Utterance
}

// Pool holds one recognizer per configured language, iterated in a fixed
// deterministic order on every frame.
type Pool struct {
	recs []Recognizer
}

// NewPool loads one recognizer per language. Any load failure closes the
// already-loaded recognizers and fails: there is no degraded
// partial-language mode.
func NewPool(factory Factory, langs []string) (*Pool, error) {
	p := &Pool{}
	for _, lang := range langs {
		rec, err := factory(lang)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("loading %s recognizer: %w", lang, err)
		}
		p.recs = append(p.recs, rec)
	}
	return p, nil
}

// Languages returns the pool's languages in feed order.
func (p *Pool) Languages() []string {
	out := make([]string, len(p.recs))
	for i, r := range p.recs {
		out[i] = r.Language()
	}
	return out
}

// Feed fans one frame out to every recognizer in order and collects any
// finals. A single engine error aborts only that recognizer's turn for this
// frame; the error is returned alongside finals from the others.
func (p *Pool) Feed(frame []byte) ([]Final, []error) {
	var finals []Final
	var errs []error
	for _, rec := range p.recs {
		utt, err := rec.Feed(frame)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s recognizer: %w", rec.Language(), err))
			continue
		}
		if utt != nil && utt.Text != "" {
			finals = append(finals, Final{Language: rec.Language(), Utterance: utt})
		}
	}
	return finals, errs
}

// Reset clears the internal decoder state of every recognizer.
func (p *Pool) Reset() {
	for _, rec := range p.recs {
		rec.Reset()
	}
}

// Close releases every recognizer.
func (p *Pool) Close() {
	for _, rec := range p.recs {
		rec.Close()
	}
	p.recs = nil
}
