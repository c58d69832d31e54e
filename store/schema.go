package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transcripts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	language TEXT NOT NULL,
	text TEXT NOT NULL,
	audio_file TEXT DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transcripts_user ON transcripts(user_id, timestamp);

CREATE TABLE IF NOT EXISTS vocabulary (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	word TEXT NOT NULL,
	language TEXT NOT NULL,
	meaning TEXT DEFAULT '',
	frequency INTEGER DEFAULT 1,
	mastery_level INTEGER DEFAULT 0,
	correct_attempts INTEGER DEFAULT 0,
	incorrect_attempts INTEGER DEFAULT 0,
	first_seen TEXT NOT NULL,
	last_practiced TEXT NOT NULL,
	UNIQUE(user_id, word, language)
);

CREATE TABLE IF NOT EXISTS oov_words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	word TEXT NOT NULL,
	language TEXT NOT NULL,
	first_seen TEXT NOT NULL,
	last_seen TEXT NOT NULL,
	occurrences INTEGER DEFAULT 1,
	UNIQUE(user_id, word, language)
);

CREATE TABLE IF NOT EXISTS learning_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	language TEXT NOT NULL,
	session_date TEXT NOT NULL,
	words_learned INTEGER DEFAULT 0,
	xp_earned INTEGER DEFAULT 0,
	UNIQUE(user_id, language, session_date)
);

CREATE TABLE IF NOT EXISTS user_progress (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	language TEXT NOT NULL,
	total_xp INTEGER DEFAULT 0,
	current_level TEXT DEFAULT 'beginner',
	streak_days INTEGER DEFAULT 0,
	last_activity TEXT DEFAULT '',
	UNIQUE(user_id, language)
)
`
