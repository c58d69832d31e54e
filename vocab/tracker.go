// Package vocab maintains per-user per-language word state: frequency from
// passive listening, mastery from explicit practice feedback, and OOV
// tracking against the static offline vocabulary.
package vocab

import (
	"database/sql"
	"fmt"
	"time"

	"linguavoice/store"
)

// ProcessResult summarizes one transcript's effect on the vocabulary.
type ProcessResult struct {
	TotalWords int
	NewWords   []string
	OOVWords   []string
}

// Tracker consumes accepted transcripts and updates vocabulary state.
// Process is deliberately not idempotent: frequency is a usage counter, not
// a deduplication cache.
type Tracker struct {
	db    *sql.DB
	locks *KeyedMutex

	// Now is overridable in tests.
	Now func() time.Time
}

func NewTracker(db *sql.DB, locks *KeyedMutex) *Tracker {
	return &Tracker{db: db, locks: locks, Now: time.Now}
}

// Process extracts candidate words from text and updates each word's
// record: existing words get a frequency bump, new words are created and
// classified against the offline vocabulary for OOV tracking.
func (t *Tracker) Process(userID, text, language string) (*ProcessResult, error) {
	words := ExtractWords(text, language)
	res := &ProcessResult{TotalWords: len(words)}
	today := t.Now()

	for _, word := range words {
		isNew, isOOV, err := t.processWord(userID, word, language, today)
		if err != nil {
			return nil, fmt.Errorf("processing word %q: %w", word, err)
		}
		if isNew {
			res.NewWords = append(res.NewWords, word)
		}
		if isOOV {
			res.OOVWords = append(res.OOVWords, word)
		}
	}

	if len(res.NewWords) > 0 {
		if err := store.AddSessionWords(t.db, userID, language, today, len(res.NewWords)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (t *Tracker) processWord(userID, word, language string, today time.Time) (isNew, isOOV bool, err error) {
	unlock := t.locks.Lock(entryKey(userID, language, word))
	defer unlock()

	entry, err := store.GetVocabularyEntry(t.db, userID, word, language)
	if err != nil {
		return false, false, err
	}

	if entry != nil {
		return false, false, store.TouchVocabularyEntry(t.db, userID, word, language, today)
	}

	if err := store.InsertVocabularyEntry(t.db, userID, word, language, today); err != nil {
		return false, false, err
	}
	isNew = true

	if !InOfflineVocab(word, language) {
		isOOV = true
		if err := store.UpsertOOV(t.db, userID, word, language, today); err != nil {
			return false, false, err
		}
	}
	return isNew, isOOV, nil
}

// ApplyMeaning patches a word's meaning after an asynchronous lookup.
// Frequency and mastery are untouched; an empty meaning is a no-op so a
// failed lookup never clobbers an earlier success.
func (t *Tracker) ApplyMeaning(userID, word, language, meaning string) error {
	if meaning == "" {
		return nil
	}
	unlock := t.locks.Lock(entryKey(userID, language, word))
	defer unlock()
	return store.SetMeaning(t.db, userID, word, language, meaning)
}
