package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: not found")

// DB wraps a SQLite database used as the session key/value store.
type DB struct{ sql *sql.DB }

// Open opens dsn. ":memory:" gives a store that lives only as long as the
// process, which is the default session scope.
func Open(dsn string) (*DB, error) {
	d, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every pooled connection to :memory: would be a separate database
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS session_kv (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	`)
	return err
}

// Put stores value under key, replacing any previous value.
func (d *DB) Put(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO session_kv(key, value, updated_at) VALUES(?,?,?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`, key, value, time.Now().UTC().Unix())
	return err
}

// Get returns the value under key or ErrNotFound.
func (d *DB) Get(ctx context.Context, key string) (string, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key=?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Delete removes keys; missing keys are ignored.
func (d *DB) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := d.sql.ExecContext(ctx, `DELETE FROM session_kv WHERE key=?`, k); err != nil {
			return err
		}
	}
	return nil
}
