//go:build vosk

package speech

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	vosk "github.com/alphacep/vosk-api/go"

	"linguavoice/encoder"
)

// VoskRecognizer is a streaming Kaldi recognizer. Endpoint detection is
// owned by the engine; Feed surfaces a final only when Vosk reports one.
type VoskRecognizer struct {
	lang       string
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

// voskResult mirrors the JSON Vosk emits for a final result when word-level
// output is enabled.
type voskResult struct {
	Text   string `json:"text"`
	Result []struct {
		Word string  `json:"word"`
		Conf float64 `json:"conf"`
	} `json:"result"`
}

// NewVoskFactory returns a Factory resolving model directories under
// modelsDir/<lang>.
func NewVoskFactory(modelsDir string) Factory {
	return func(lang string) (Recognizer, error) {
		return NewVosk(filepath.Join(modelsDir, lang), lang)
	}
}

func NewVosk(modelPath, lang string) (*VoskRecognizer, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("vosk model directory not found: %s", modelPath)
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading vosk model %s: %w", modelPath, err)
	}

	rec, err := vosk.NewRecognizer(model, float64(encoder.SampleRate))
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("creating vosk recognizer: %w", err)
	}
	rec.SetWords(1) // word-level confidences in finals

	return &VoskRecognizer{lang: lang, model: model, recognizer: rec}, nil
}

func (v *VoskRecognizer) Language() string { return v.lang }

func (v *VoskRecognizer) Feed(frame []byte) (*Utterance, error) {
	if v.recognizer.AcceptWaveform(frame) == 0 {
		return nil, nil
	}

	var result voskResult
	if err := json.Unmarshal([]byte(v.recognizer.Result()), &result); err != nil {
		return nil, fmt.Errorf("parsing vosk result: %w", err)
	}

	utt := &Utterance{Text: result.Text}
	for _, w := range result.Result {
		utt.Words = append(utt.Words, Word{Text: w.Word, Conf: w.Conf})
	}
	return utt, nil
}

func (v *VoskRecognizer) Reset() {
	v.recognizer.Reset()
}

func (v *VoskRecognizer) Close() {
	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
}
