package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jask/mdtabs/internal/database"
)

// KVRepo stores opaque values by key.
type KVRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewKVRepo returns a repo over a migrated database.
func NewKVRepo(db *sql.DB) *KVRepo {
	return &KVRepo{db: db, now: database.Now}
}

// Get returns the value for key, or nil when the key is absent.
func (r *KVRepo) Get(ctx context.Context, key string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	var v []byte
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// Put upserts value under key and stamps updated_at.
func (r *KVRepo) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return database.WithTx(r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO kv(key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
		`, key, value, r.now())
		return err
	})
}

// Delete removes key. Deleting an absent key is not an error.
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}
