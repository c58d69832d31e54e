package vocab

import (
	"database/sql"
	"fmt"
	"time"

	"linguavoice/store"
)

// XP awards per practice answer.
const (
	XPCorrect   = 10
	XPIncorrect = 2
)

// Level names, in ascending order of XP.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelProficient   = "proficient"
)

// Mastery bounds. The ratchet never moves more than one step per answer.
const (
	masteryMin = 0
	masteryMax = 5
)

// masteryPromoteRatio is the overall accuracy a word must exceed before a
// correct answer raises its mastery.
const masteryPromoteRatio = 0.8

// LevelForXP maps accumulated XP to a level name.
func LevelForXP(xp int) string {
	switch {
	case xp < 100:
		return LevelBeginner
	case xp < 500:
		return LevelIntermediate
	case xp < 1500:
		return LevelAdvanced
	default:
		return LevelProficient
	}
}

// RecordResult reports the state after one practice answer.
type RecordResult struct {
	XPAwarded    int
	TotalXP      int
	Level        string
	StreakDays   int
	MasteryLevel int
}

// Scorer applies practice feedback: per-word attempt counters and mastery,
// plus the user's XP, level and streak. It must share a KeyedMutex with the
// Tracker so concurrent updates to the same word serialize.
type Scorer struct {
	db    *sql.DB
	locks *KeyedMutex

	// Now is overridable in tests.
	Now func() time.Time
}

func NewScorer(db *sql.DB, locks *KeyedMutex) *Scorer {
	return &Scorer{db: db, locks: locks, Now: time.Now}
}

// Record registers one practice answer for a word. XP is awarded whether or
// not the word has a vocabulary entry; mastery only moves for tracked words.
func (s *Scorer) Record(userID, language, word string, correct bool) (*RecordResult, error) {
	today := s.Now()

	mastery, err := s.updateWord(userID, language, word, correct)
	if err != nil {
		return nil, fmt.Errorf("updating word %q: %w", word, err)
	}

	xp := XPIncorrect
	if correct {
		xp = XPCorrect
	}
	progress, err := s.addXP(userID, language, xp, today)
	if err != nil {
		return nil, err
	}
	if err := store.AddSessionXP(s.db, userID, language, today, xp); err != nil {
		return nil, err
	}

	return &RecordResult{
		XPAwarded:    xp,
		TotalXP:      progress.TotalXP,
		Level:        progress.CurrentLevel,
		StreakDays:   progress.StreakDays,
		MasteryLevel: mastery,
	}, nil
}

// updateWord bumps the attempt counters and applies the mastery ratchet.
// Unknown words are a no-op returning mastery 0.
func (s *Scorer) updateWord(userID, language, word string, correct bool) (int, error) {
	unlock := s.locks.Lock(entryKey(userID, language, word))
	defer unlock()

	entry, err := store.GetVocabularyEntry(s.db, userID, word, language)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}

	c, i := entry.CorrectAttempts, entry.IncorrectAttempts
	if correct {
		c++
	} else {
		i++
	}

	mastery := nextMastery(entry.MasteryLevel, c, i, correct)
	if err := store.UpdateMastery(s.db, userID, word, language, c, i, mastery); err != nil {
		return 0, err
	}
	return mastery, nil
}

// nextMastery applies the ratchet: promote only when overall accuracy is
// high, demote only when wrong answers outnumber right ones.
func nextMastery(current, correct, incorrect int, wasCorrect bool) int {
	total := correct + incorrect
	if wasCorrect {
		if total > 0 && float64(correct)/float64(total) > masteryPromoteRatio && current < masteryMax {
			return current + 1
		}
		return current
	}
	if incorrect > correct && current > masteryMin {
		return current - 1
	}
	return current
}

// addXP folds xp into the user's progress record, recomputing level and
// streak against today's date.
func (s *Scorer) addXP(userID, language string, xp int, today time.Time) (*store.UserProgress, error) {
	unlock := s.locks.Lock(userID + "\x00" + language + "\x00progress")
	defer unlock()

	p, err := store.GetProgress(s.db, userID, language)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &store.UserProgress{UserID: userID, Language: language}
	}

	p.TotalXP += xp
	p.CurrentLevel = LevelForXP(p.TotalXP)
	p.StreakDays = nextStreak(p.StreakDays, p.LastActivity, today)
	p.LastActivity = today

	if err := store.PutProgress(s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// nextStreak: consecutive-day activity extends the streak, a gap resets it
// to 1, repeat activity on the same day leaves it alone.
func nextStreak(streak int, last, today time.Time) int {
	if last.IsZero() || streak == 0 {
		return 1
	}
	lastDay := last.Format(store.DateFormat)
	todayDay := today.Format(store.DateFormat)
	if lastDay == todayDay {
		return streak
	}
	if last.AddDate(0, 0, 1).Format(store.DateFormat) == todayDay {
		return streak + 1
	}
	return 1
}
