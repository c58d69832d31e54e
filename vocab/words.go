package vocab

import (
	"regexp"
	"strings"
)

// wordPattern matches runs of Latin letters (with Western European
// diacritics) or Devanagari. Digits and punctuation break words.
var wordPattern = regexp.MustCompile(`[a-zA-Z\x{00C0}-\x{017F}\x{0900}-\x{097F}]+`)

// stopWords are frequent function words excluded from vocabulary tracking,
// per language.
var stopWords = map[string]map[string]bool{
	"en": {
		"the": true, "and": true, "are": true, "was": true, "were": true,
		"you": true, "she": true, "his": true, "her": true, "has": true,
		"had": true, "for": true, "not": true, "but": true, "this": true,
		"that": true, "with": true,
	},
	"es": {
		"los": true, "las": true, "una": true, "unos": true, "unas": true,
		"del": true, "con": true, "por": true, "para": true, "que": true,
		"son": true, "está": true, "como": true, "pero": true,
	},
	"hi": {
		"है": true, "का": true, "की": true, "के": true, "में": true,
		"से": true, "को": true, "और": true, "यह": true, "वह": true,
		"पर": true, "एक": true,
	},
}

// minWordLen: tokens this short or shorter carry too little signal.
const minWordLen = 2

// ExtractWords tokenizes text into trackable candidate words: alphabetic
// runs in the relevant Unicode ranges, lowercased, with short tokens and
// stop words dropped.
func ExtractWords(text, language string) []string {
	stops := stopWords[language]
	var out []string
	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(tok)) <= minWordLen {
			continue
		}
		if stops[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}
