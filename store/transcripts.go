package store

import (
	"fmt"
	"time"
)

// InsertTranscript appends an accepted transcript.
func InsertTranscript(db DBExecutor, t *Transcript) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO transcripts (user_id, timestamp, language, text, audio_file) VALUES (?, ?, ?, ?, ?)`,
		t.UserID, t.Timestamp.Format(TimeFormat), t.Language, t.Text, t.AudioFile,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transcript: %w", err)
	}
	return res.LastInsertId()
}

// ListTranscripts returns the most recent transcripts for a user, newest
// first. language filters when non-empty.
func ListTranscripts(db DBExecutor, userID, language string, limit int) ([]Transcript, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, user_id, timestamp, language, text, audio_file FROM transcripts WHERE user_id = ?`
	args := []interface{}{userID}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transcript
	for rows.Next() {
		var t Transcript
		var ts string
		if err := rows.Scan(&t.ID, &t.UserID, &ts, &t.Language, &t.Text, &t.AudioFile); err != nil {
			return nil, err
		}
		t.Timestamp, _ = time.Parse(TimeFormat, ts)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ClearTranscripts removes all transcripts for a user (bulk clear only).
func ClearTranscripts(db DBExecutor, userID string) error {
	_, err := db.Exec(`DELETE FROM transcripts WHERE user_id = ?`, userID)
	return err
}
