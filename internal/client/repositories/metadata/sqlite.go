package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/dbx"
)

// prefixMatch compares the leading characters directly; LIKE would treat
// "_" in a key as a wildcard.
const prefixMatch = `substr(key, 1, length(?)) = ?`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("metadata[%s]: %w", key, common.ErrorNotFound)
	case err != nil:
		return nil, fmt.Errorf("read metadata[%s]: %w", key, err)
	}
	return value, nil
}

// Put upserts every entry of values in key order. A nil value is stored as
// an empty one. Callers wanting all-or-nothing run it inside dbx.WithTx.
func (r *SQLiteRepository) Put(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := values[key]
		if value == nil {
			value = []byte{}
		}
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value)
		if err != nil {
			return fmt.Errorf("write metadata[%s]: %w", key, err)
		}
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete metadata[%s]: %w", key, err)
		}
	}
	return nil
}

// Scan returns the entries whose key starts with prefix, keyed by full key.
func (r *SQLiteRepository) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value FROM metadata WHERE `+prefixMatch, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan metadata[%s*]: %w", prefix, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan metadata[%s*]: %w", prefix, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan metadata[%s*]: %w", prefix, err)
	}
	return out, nil
}

// Purge deletes every key under prefix and reports how many went.
func (r *SQLiteRepository) Purge(ctx context.Context, prefix string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE `+prefixMatch, prefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("purge metadata[%s*]: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge metadata[%s*]: %w", prefix, err)
	}
	return n, nil
}
