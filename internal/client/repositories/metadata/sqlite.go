package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

// GetTime returns nil, nil when key is absent.
func (r *SQLiteRepository) GetTime(ctx context.Context, key string) (*time.Time, error) {
	v, err := r.Get(ctx, key)
	if err != nil || v == nil {
		return nil, err
	}
	t, err := common.ParseTimestamp(string(v))
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata[%s]: %w", key, err)
	}
	return t, nil
}

// SetTime stores t, or deletes key when t is nil.
func (r *SQLiteRepository) SetTime(ctx context.Context, key string, t *time.Time) error {
	if t == nil {
		return r.Delete(ctx, key)
	}
	return r.Set(ctx, key, []byte(common.FormatTimestamp(*t)))
}
