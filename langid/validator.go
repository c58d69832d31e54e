package langid

import (
	"strings"
	"unicode"
)

const (
	// minConfidence is deliberately permissive to favor recall.
	minConfidence = 0.1

	// scriptRatio: for a complex-script producer, this share of the
	// utterance's letters must fall in that script's block.
	scriptRatio = 0.7

	// foreignRatio: an utterance is rejected when more than this share of
	// its characters belongs to another language's distinctive set.
	foreignRatio = 0.3
)

// Rejection reasons.
const (
	ReasonTooShort      = "too_short"
	ReasonLowConfidence = "low_confidence"
	ReasonNoWords       = "no_words"
	ReasonWrongScript   = "wrong_script"
	ReasonCrossLanguage = "cross_language"
)

// Verdict is the validator's decision for one finalized utterance.
type Verdict struct {
	Accepted   bool
	Language   string  // accepted language label
	Confidence float64 // mean word confidence
	Reason     string  // set when rejected
}

// Validator arbitrates finals produced by concurrent per-language
// recognizers. It is a pure decision function over the utterance text, the
// per-word confidences and the producing recognizer's language.
type Validator struct {
	det *Detector
}

func NewValidator(det *Detector) *Validator {
	return &Validator{det: det}
}

func meanConfidence(confs []float64) float64 {
	if len(confs) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confs {
		sum += c
	}
	return sum / float64(len(confs))
}

// Validate applies the rejection rules in order; the first failing rule wins.
func (v *Validator) Validate(text string, wordConfs []float64, producing string) Verdict {
	text = strings.TrimSpace(text)
	conf := meanConfidence(wordConfs)

	if len([]rune(text)) < 3 {
		return Verdict{Reason: ReasonTooShort, Confidence: conf}
	}

	if conf < minConfidence {
		return Verdict{Reason: ReasonLowConfidence, Confidence: conf}
	}

	prod := v.det.profileFor(producing)
	words := strings.Fields(text)
	if len(words) < 1 && (prod == nil || !prod.complexScript) {
		return Verdict{Reason: ReasonNoWords, Confidence: conf}
	}

	if prod != nil && prod.complexScript {
		// Complex-script producer: the text must actually be written in
		// that script. Rejects Latin leakage from a wrong-language final.
		letters, inScript := 0, 0
		for _, r := range text {
			if !unicode.IsLetter(r) && !unicode.IsMark(r) {
				continue
			}
			letters++
			if prod.chars[r] {
				inScript++
			}
		}
		if letters == 0 || float64(inScript)/float64(letters) < scriptRatio {
			return Verdict{Reason: ReasonWrongScript, Confidence: conf}
		}
	} else {
		// Latin-script producer: the offline classifier can veto when it
		// confidently identifies a different language.
		detected := v.det.Classify(text)
		if detected != Unknown && detected != producing {
			return Verdict{Reason: ReasonCrossLanguage, Confidence: conf}
		}
	}

	// Too many characters from another language's distinctive set.
	runes := []rune(text)
	for _, other := range v.det.profiles {
		if other.code == producing || len(other.distinctive) == 0 {
			continue
		}
		foreign := 0
		for _, r := range runes {
			if other.distinctive[r] {
				foreign++
			}
		}
		if float64(foreign)/float64(len(runes)) > foreignRatio {
			return Verdict{Reason: ReasonCrossLanguage, Confidence: conf}
		}
	}

	// Accepted. The classifier's verdict wins the label when confident;
	// otherwise the producing recognizer's language is the default.
	label := producing
	if detected := v.det.Classify(text); detected != Unknown {
		label = detected
	}
	return Verdict{Accepted: true, Language: label, Confidence: conf}
}
