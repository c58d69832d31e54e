package store

import (
	"fmt"
	"time"
)

// UpsertOOV records a sighting of an out-of-vocabulary word: creates the
// entry with occurrences 1 or bumps the counter and last_seen.
func UpsertOOV(db DBExecutor, userID, word, language string, day time.Time) error {
	date := day.Format(DateFormat)
	_, err := db.Exec(
		`INSERT INTO oov_words (user_id, word, language, first_seen, last_seen, occurrences)
		 VALUES (?, ?, ?, ?, ?, 1)
		 ON CONFLICT(user_id, word, language)
		 DO UPDATE SET last_seen = excluded.last_seen, occurrences = occurrences + 1`,
		userID, word, language, date, date,
	)
	if err != nil {
		return fmt.Errorf("upsert oov word: %w", err)
	}
	return nil
}

// ListOOV returns a user's OOV words, most recently seen first.
func ListOOV(db DBExecutor, userID, language string) ([]OOVEntry, error) {
	query := `SELECT id, user_id, word, language, first_seen, last_seen, occurrences
	          FROM oov_words WHERE user_id = ?`
	args := []interface{}{userID}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY last_seen DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OOVEntry
	for rows.Next() {
		var e OOVEntry
		var first, last string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Word, &e.Language, &first, &last, &e.Occurrences); err != nil {
			return nil, err
		}
		e.FirstSeen, _ = time.Parse(DateFormat, first)
		e.LastSeen, _ = time.Parse(DateFormat, last)
		out = append(out, e)
	}
	return out, rows.Err()
}
