package store

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Store provides SQLite persistence for users, sessions and the executed
// trade tape. Book state is deliberately not persisted; the tape is a record
// of engine notifications, not of resting orders.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and initializes the schema.
// Use ":memory:" for tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		expires_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		taker_side TEXT NOT NULL,  -- 'buy' or 'sell'
		taker_kind TEXT NOT NULL,  -- 'limit' or 'market'
		price INTEGER NOT NULL,    -- in cents
		quantity INTEGER NOT NULL,
		taker_order_id INTEGER NOT NULL,
		maker_order_id INTEGER NOT NULL,
		executed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	CREATE INDEX IF NOT EXISTS idx_trades_executed ON trades(executed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}
