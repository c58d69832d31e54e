package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetProgress fetches the (user, language) progress record, or nil when the
// user has no activity in that language yet.
func GetProgress(db DBExecutor, userID, language string) (*UserProgress, error) {
	var p UserProgress
	var lastActivity string
	err := db.QueryRow(
		`SELECT user_id, language, total_xp, current_level, streak_days, last_activity
		 FROM user_progress WHERE user_id = ? AND language = ?`,
		userID, language,
	).Scan(&p.UserID, &p.Language, &p.TotalXP, &p.CurrentLevel, &p.StreakDays, &lastActivity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastActivity != "" {
		p.LastActivity, _ = time.Parse(DateFormat, lastActivity)
	}
	return &p, nil
}

// PutProgress writes the full progress record, inserting on first activity.
// A unique-key race degrades to the update path.
func PutProgress(db DBExecutor, p *UserProgress) error {
	lastActivity := ""
	if !p.LastActivity.IsZero() {
		lastActivity = p.LastActivity.Format(DateFormat)
	}
	_, err := db.Exec(
		`INSERT INTO user_progress (user_id, language, total_xp, current_level, streak_days, last_activity)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, language)
		 DO UPDATE SET total_xp = excluded.total_xp, current_level = excluded.current_level,
		               streak_days = excluded.streak_days, last_activity = excluded.last_activity`,
		p.UserID, p.Language, p.TotalXP, p.CurrentLevel, p.StreakDays, lastActivity,
	)
	if err != nil {
		return fmt.Errorf("put progress: %w", err)
	}
	return nil
}

// AddSessionWords adds to today's words-learned counter for (user, language).
func AddSessionWords(db DBExecutor, userID, language string, day time.Time, words int) error {
	return addSession(db, userID, language, day, words, 0)
}

// AddSessionXP adds to today's xp-earned counter for (user, language).
func AddSessionXP(db DBExecutor, userID, language string, day time.Time, xp int) error {
	return addSession(db, userID, language, day, 0, xp)
}

func addSession(db DBExecutor, userID, language string, day time.Time, words, xp int) error {
	_, err := db.Exec(
		`INSERT INTO learning_sessions (user_id, language, session_date, words_learned, xp_earned)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, language, session_date)
		 DO UPDATE SET words_learned = words_learned + excluded.words_learned,
		               xp_earned = xp_earned + excluded.xp_earned`,
		userID, language, day.Format(DateFormat), words, xp,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// GetSession returns one day's counters, or nil when no activity.
func GetSession(db DBExecutor, userID, language string, day time.Time) (*SessionStat, error) {
	var s SessionStat
	var date string
	err := db.QueryRow(
		`SELECT user_id, language, session_date, words_learned, xp_earned
		 FROM learning_sessions WHERE user_id = ? AND language = ? AND session_date = ?`,
		userID, language, day.Format(DateFormat),
	).Scan(&s.UserID, &s.Language, &date, &s.WordsLearned, &s.XPEarned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Date, _ = time.Parse(DateFormat, date)
	return &s, nil
}

// ResetUserData clears all learning state for a user. Each table is cleared
// in its own statement: all-or-nothing per table, no cross-table atomicity.
func ResetUserData(db DBExecutor, userID string) error {
	for _, table := range []string{"vocabulary", "oov_words", "learning_sessions", "user_progress", "transcripts"} {
		if _, err := db.Exec(`DELETE FROM `+table+` WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
