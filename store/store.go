// Package store is the sqlite persistence layer. Functions take a DBExecutor
// so they work over both *sql.DB and *sql.Tx.
package store

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DBExecutor is satisfied by *sql.DB and *sql.Tx.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DateFormat is the storage format for date-valued columns.
const DateFormat = "2006-01-02"

// TimeFormat is the storage format for timestamp columns.
const TimeFormat = "2006-01-02 15:04:05"

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite is a single-writer store; one connection avoids SQLITE_BUSY
	// under concurrent upserts and makes :memory: databases usable.
	db.SetMaxOpenConns(1)
	if err := Init(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Init applies the embedded schema statements.
func Init(db *sql.DB) error {
	for _, s := range strings.Split(schemaSQL, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueConstraintErr returns true when the error indicates a
// unique/constraint violation. Concurrent upsert races surface this way and
// are handled as fetch-then-update, never propagated.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}
