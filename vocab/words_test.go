package vocab

import (
	"reflect"
	"testing"
)

func TestExtractWords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		language string
		want     []string
	}{
		{
			name:     "lowercases and splits on punctuation",
			text:     "Hello, World! Water?",
			language: "en",
			want:     []string{"hello", "world", "water"},
		},
		{
			name:     "drops stop words and short tokens",
			text:     "the cat is on a mat",
			language: "en",
			want:     []string{"cat", "mat"},
		},
		{
			name:     "spanish diacritics survive",
			text:     "el niño come mañana",
			language: "es",
			want:     []string{"niño", "come", "mañana"},
		},
		{
			name:     "spanish stop words",
			text:     "los perros y las casas",
			language: "es",
			want:     []string{"perros", "casas"},
		},
		{
			name:     "devanagari tokens",
			text:     "मुझे पानी चाहिए",
			language: "hi",
			want:     []string{"मुझे", "पानी", "चाहिए"},
		},
		{
			name:     "hindi stop words dropped",
			text:     "घर में पानी है",
			language: "hi",
			want:     []string{"घर", "पानी"},
		},
		{
			name:     "digits break words",
			text:     "covid19 cases",
			language: "en",
			want:     []string{"covid", "cases"},
		},
		{
			name:     "empty text",
			text:     "",
			language: "en",
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractWords(tt.text, tt.language)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractWords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestInOfflineVocab(t *testing.T) {
	if !InOfflineVocab("hola", "es") {
		t.Error("hola should be in the es offline vocabulary")
	}
	if !InOfflineVocab("sophisticated", "en") {
		t.Error("sophisticated should be in the en advanced tier")
	}
	if InOfflineVocab("zorro", "es") {
		t.Error("zorro should be out of vocabulary")
	}
	if InOfflineVocab("hola", "fr") {
		t.Error("unknown language should never match")
	}
}

func TestTierWords(t *testing.T) {
	basic := TierWords("hi", TierBasic)
	if len(basic) == 0 {
		t.Fatal("hi basic tier is empty")
	}
	if TierWords("en", "expert") != nil {
		t.Error("unknown tier should return nil")
	}
	if TierWords("fr", TierBasic) != nil {
		t.Error("unknown language should return nil")
	}
}
