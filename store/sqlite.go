package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/moneyhero"
	_ "modernc.org/sqlite"
)

// SQLite stores player states in a key/value table of a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens, or creates, the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS player_states (
		key TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Load(key string) (*moneyhero.PlayerState, error) {
	var data string
	err := s.db.QueryRow(`SELECT state FROM player_states WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load %q: %w", key, err)
	}
	st, err := decodeState([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", key, err)
	}
	return st, nil
}

func (s *SQLite) Save(key string, st *moneyhero.PlayerState) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO player_states(key, state, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("could not save %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM player_states WHERE key = ?`, key); err != nil {
		return fmt.Errorf("could not remove %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in alphabetical order.
func (s *SQLite) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM player_states ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
