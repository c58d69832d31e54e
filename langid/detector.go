// Package langid holds the offline language heuristics: a character/common-word
// classifier and the utterance validator that arbitrates between concurrent
// per-language recognizer finals.
package langid

import "strings"

// Unknown is returned when no language scores above the confidence threshold.
const Unknown = "unknown"

// scoreThreshold is the minimum score for a confident verdict.
const scoreThreshold = 10.0

type profile struct {
	code string
	// chars is the language's full alphabet including diacritics or script.
	chars map[rune]bool
	// distinctive holds characters that strongly mark this language and
	// rarely appear in the others (diacritics, script block).
	distinctive map[rune]bool
	// commonWords are very frequent function words.
	commonWords map[string]bool
	// complexScript marks non-alphabetic scripts where single tokens carry
	// enough signal (exempt from the validator's word floor).
	complexScript bool
}

func runeSet(s string) map[rune]bool {
	m := make(map[rune]bool, len(s))
	for _, r := range s {
		m[r] = true
	}
	return m
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// devanagari reports whether r falls in the Devanagari Unicode block.
func devanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

const latinLower = "abcdefghijklmnopqrstuvwxyz"
const latinUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const spanishExtra = "áéíóúüñÁÉÍÓÚÜÑ"

// Detector scores text against a fixed, ordered set of language profiles.
// The registration order is the tie-break: on an exact score tie the
// first-registered language wins.
type Detector struct {
	profiles []*profile
}

// NewDetector returns a detector for the supported languages in fixed
// priority order: en, es, hi.
func NewDetector() *Detector {
	hiChars := make(map[rune]bool)
	for r := rune(0x0900); r <= 0x097F; r++ {
		hiChars[r] = true
	}

	return &Detector{profiles: []*profile{
		{
			code:  "en",
			chars: runeSet(latinLower + latinUpper),
			commonWords: wordSet("the", "and", "is", "in", "to", "of", "a",
				"that", "it", "with", "for", "as", "was", "on", "are", "you",
				"this", "be", "at", "have"),
		},
		{
			code:        "es",
			chars:       runeSet(latinLower + latinUpper + spanishExtra),
			distinctive: runeSet(spanishExtra + "¿¡"),
			commonWords: wordSet("el", "la", "de", "que", "y", "a", "en",
				"un", "es", "se", "no", "te", "lo", "le", "da", "su", "por",
				"son", "con", "para", "hola"),
		},
		{
			code:          "hi",
			chars:         hiChars,
			distinctive:   hiChars,
			complexScript: true,
			commonWords: wordSet("है", "का", "की", "के", "में", "से", "को",
				"और", "यह", "वह", "पर", "एक", "हो", "गया", "था", "कि", "जो",
				"तो", "ही", "या"),
		},
	}}
}

// Languages returns the supported language codes in priority order.
func (d *Detector) Languages() []string {
	codes := make([]string, len(d.profiles))
	for i, p := range d.profiles {
		codes[i] = p.code
	}
	return codes
}

// Scores returns the 0-100ish score per language for the given text.
func (d *Detector) Scores(text string) map[string]float64 {
	scores := make(map[string]float64, len(d.profiles))
	runes := []rune(text)
	words := strings.Fields(strings.ToLower(text))

	for _, p := range d.profiles {
		var s float64
		if len(runes) > 0 {
			chars := 0
			for _, r := range runes {
				if p.chars[r] {
					chars++
				}
			}
			s += float64(chars) / float64(len(runes)) * 50
		}
		if len(words) > 0 {
			matches := 0
			for _, w := range words {
				if p.commonWords[w] {
					matches++
				}
			}
			s += float64(matches) / float64(len(words)) * 50
		}
		scores[p.code] = s
	}
	return scores
}

// Classify returns the best-scoring language, or Unknown when nothing scores
// above the confidence threshold. Ties resolve to the first-registered
// language.
func (d *Detector) Classify(text string) string {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}
	scores := d.Scores(text)

	best := ""
	bestScore := 0.0
	for _, p := range d.profiles {
		if s := scores[p.code]; best == "" || s > bestScore {
			best, bestScore = p.code, s
		}
	}
	if bestScore > scoreThreshold {
		return best
	}
	return Unknown
}

func (d *Detector) profileFor(code string) *profile {
	for _, p := range d.profiles {
		if p.code == code {
			return p
		}
	}
	return nil
}
