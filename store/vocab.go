package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetVocabularyEntry fetches one (user, word, language) entry, or nil when
// the word has not been seen.
func GetVocabularyEntry(db DBExecutor, userID, word, language string) (*VocabularyEntry, error) {
	row := db.QueryRow(
		`SELECT id, user_id, word, language, meaning, frequency, mastery_level,
		        correct_attempts, incorrect_attempts, first_seen, last_practiced
		 FROM vocabulary WHERE user_id = ? AND word = ? AND language = ?`,
		userID, word, language,
	)
	e, err := scanVocabRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVocabRow(row rowScanner) (*VocabularyEntry, error) {
	var e VocabularyEntry
	var first, last string
	err := row.Scan(&e.ID, &e.UserID, &e.Word, &e.Language, &e.Meaning,
		&e.Frequency, &e.MasteryLevel, &e.CorrectAttempts, &e.IncorrectAttempts,
		&first, &last)
	if err != nil {
		return nil, err
	}
	e.FirstSeen, _ = time.Parse(DateFormat, first)
	e.LastPracticed, _ = time.Parse(DateFormat, last)
	return &e, nil
}

// InsertVocabularyEntry creates a first-sighting record (frequency 1, mastery
// 0). A concurrent insert racing on the unique key falls back to the
// touch-existing path.
func InsertVocabularyEntry(db DBExecutor, userID, word, language string, day time.Time) error {
	date := day.Format(DateFormat)
	_, err := db.Exec(
		`INSERT INTO vocabulary (user_id, word, language, first_seen, last_practiced) VALUES (?, ?, ?, ?, ?)`,
		userID, word, language, date, date,
	)
	if isUniqueConstraintErr(err) {
		return TouchVocabularyEntry(db, userID, word, language, day)
	}
	if err != nil {
		return fmt.Errorf("insert vocabulary entry: %w", err)
	}
	return nil
}

// TouchVocabularyEntry increments frequency and refreshes last_practiced for
// an existing entry.
func TouchVocabularyEntry(db DBExecutor, userID, word, language string, day time.Time) error {
	_, err := db.Exec(
		`UPDATE vocabulary SET frequency = frequency + 1, last_practiced = ?
		 WHERE user_id = ? AND word = ? AND language = ?`,
		day.Format(DateFormat), userID, word, language,
	)
	return err
}

// UpdateMastery writes attempt counters and the mastery level computed by
// the scorer. Nothing else may set mastery_level.
func UpdateMastery(db DBExecutor, userID, word, language string, correct, incorrect, mastery int) error {
	_, err := db.Exec(
		`UPDATE vocabulary SET correct_attempts = ?, incorrect_attempts = ?, mastery_level = ?
		 WHERE user_id = ? AND word = ? AND language = ?`,
		correct, incorrect, mastery, userID, word, language,
	)
	return err
}

// SetMeaning patches the meaning field only; frequency and mastery are
// untouched.
func SetMeaning(db DBExecutor, userID, word, language, meaning string) error {
	_, err := db.Exec(
		`UPDATE vocabulary SET meaning = ? WHERE user_id = ? AND word = ? AND language = ?`,
		meaning, userID, word, language,
	)
	return err
}

// ListVocabulary returns a user's vocabulary ordered by most recently
// practiced. language filters when non-empty.
func ListVocabulary(db DBExecutor, userID, language string, limit int) ([]VocabularyEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT id, user_id, word, language, meaning, frequency, mastery_level,
	                 correct_attempts, incorrect_attempts, first_seen, last_practiced
	          FROM vocabulary WHERE user_id = ?`
	args := []interface{}{userID}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY last_practiced DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VocabularyEntry
	for rows.Next() {
		e, err := scanVocabRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// WeakWords returns low-mastery words ordered by accuracy ascending, for
// review prioritization.
func WeakWords(db DBExecutor, userID, language string, limit int) ([]VocabularyEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(
		`SELECT id, user_id, word, language, meaning, frequency, mastery_level,
		        correct_attempts, incorrect_attempts, first_seen, last_practiced
		 FROM vocabulary
		 WHERE user_id = ? AND language = ? AND mastery_level < 3
		 ORDER BY (correct_attempts * 1.0 / NULLIF(correct_attempts + incorrect_attempts, 0)) ASC
		 LIMIT ?`,
		userID, language, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VocabularyEntry
	for rows.Next() {
		e, err := scanVocabRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// NewWordsByDay returns words first seen within the last `days`, grouped by
// first_seen date (newest date first).
func NewWordsByDay(db DBExecutor, userID, language string, days int) (map[string][]string, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format(DateFormat)

	query := `SELECT first_seen, word FROM vocabulary WHERE user_id = ? AND first_seen >= ?`
	args := []interface{}{userID, cutoff}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY first_seen DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string][]string)
	for rows.Next() {
		var date, word string
		if err := rows.Scan(&date, &word); err != nil {
			return nil, err
		}
		grouped[date] = append(grouped[date], word)
	}
	return grouped, rows.Err()
}
