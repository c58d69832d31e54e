package vocab

// Tier names for the static offline vocabulary.
const (
	TierBasic        = "basic"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
)

// offlineVocab is the fixed per-language reference vocabulary used only as
// an OOV membership test. It is never mutated at runtime; OOV status is a
// one-time classification at first sighting.
var offlineVocab = map[string]map[string][]string{
	"en": {
		TierBasic:        {"hello", "goodbye", "please", "thank", "yes", "no", "water", "food", "house", "family"},
		TierIntermediate: {"beautiful", "important", "different", "possible", "available", "necessary"},
		TierAdvanced:     {"sophisticated", "comprehensive", "extraordinary", "magnificent", "tremendous"},
	},
	"es": {
		TierBasic:        {"hola", "adiós", "por favor", "gracias", "sí", "no", "agua", "comida", "casa", "familia"},
		TierIntermediate: {"hermoso", "importante", "diferente", "posible", "disponible", "necesario"},
		TierAdvanced:     {"sofisticado", "comprensivo", "extraordinario", "magnífico", "tremendo"},
	},
	"hi": {
		TierBasic:        {"namaste", "alvida", "kripaya", "dhanyawad", "haan", "nahin", "paani", "khana", "ghar", "parivar"},
		TierIntermediate: {"sundar", "mahattvapurna", "alag", "sambhav", "uplabdh", "aavashyak"},
		TierAdvanced:     {"pariskhrit", "vyapak", "asadharan", "shandar", "bhayanak"},
	},
}

// InOfflineVocab reports whether word appears in any tier of the language's
// static vocabulary.
func InOfflineVocab(word, language string) bool {
	tiers, ok := offlineVocab[language]
	if !ok {
		return false
	}
	for _, words := range tiers {
		for _, w := range words {
			if w == word {
				return true
			}
		}
	}
	return false
}

// TierWords returns the words of one tier (nil for unknown language/tier).
func TierWords(language, tier string) []string {
	tiers, ok := offlineVocab[language]
	if !ok {
		return nil
	}
	return tiers[tier]
}
