package store

import "time"

// Transcript is one accepted utterance. Append-only; never mutated except by
// the bulk clear operation. AudioFile is a weak reference to a chunk file
// and may be empty.
type Transcript struct {
	ID        int64
	UserID    string
	Timestamp time.Time
	Language  string
	Text      string
	AudioFile string
}

// VocabularyEntry tracks one (user, word, language) triple. MasteryLevel is
// only ever changed through the mastery scorer's rule.
type VocabularyEntry struct {
	ID                int64
	UserID            string
	Word              string
	Language          string
	Meaning           string
	Frequency         int
	MasteryLevel      int
	CorrectAttempts   int
	IncorrectAttempts int
	FirstSeen         time.Time
	LastPracticed     time.Time
}

// OOVEntry tracks sightings of a word absent from the static offline
// vocabulary. Purely additive; classification happens once at first
// sighting.
type OOVEntry struct {
	ID          int64
	UserID      string
	Word        string
	Language    string
	FirstSeen   time.Time
	LastSeen    time.Time
	Occurrences int
}

// UserProgress is the per-(user, language) XP/streak record. CurrentLevel is
// derived from TotalXP, recomputed on every update.
type UserProgress struct {
	UserID       string
	Language     string
	TotalXP      int
	CurrentLevel string
	StreakDays   int
	LastActivity time.Time // zero when no prior activity
}

// SessionStat is one day's learning counters for a (user, language).
type SessionStat struct {
	UserID       string
	Language     string
	Date         time.Time
	WordsLearned int
	XPEarned     int
}
