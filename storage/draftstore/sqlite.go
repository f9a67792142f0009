package draftstore

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// sqliteKV persists entries in a single-table SQLite file, one row per key.
// This is the durable per-profile medium; a new file is created on first use.
type sqliteKV struct {
	db *sqlx.DB
}

var _ KV = (*sqliteKV)(nil)

func OpenSQLiteKV(path string) (*sqliteKV, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if _, err = db.Exec(kvSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating kv_store table")
	}
	return &sqliteKV{db: db}, nil
}

func (kv *sqliteKV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := kv.db.Get(&value, `SELECT value FROM kv_store WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "getting %q", key)
	}
	return value, true, nil
}

func (kv *sqliteKV) Set(key string, value []byte) error {
	_, err := kv.db.Exec(
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return errors.Wrapf(err, "setting %q", key)
}

func (kv *sqliteKV) Remove(key string) error {
	_, err := kv.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key)
	return errors.Wrapf(err, "removing %q", key)
}

func (kv *sqliteKV) Close() error {
	return kv.db.Close()
}
