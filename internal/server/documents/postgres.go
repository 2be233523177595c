package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medsupply/internal/dbx"
)

// PostgresRepository keeps documents in the jsonb column of the documents
// table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, collection string) ([]Document, error) {
	query := `SELECT key, data FROM documents WHERE collection = $1 ORDER BY key`
	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	result := []Document{}
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, fmt.Errorf("document %s/%s: %w", collection, key, err)
		}
		result = append(result, Document{Key: key, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, collection, key string) (*Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND key = $2`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, collection, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select document: %w", err)
	}

	data, err := decodeData(raw)
	if err != nil {
		return nil, fmt.Errorf("document %s/%s: %w", collection, key, err)
	}
	return &Document{Key: key, Data: data}, nil
}

// Put creates the document or replaces its data.
func (r *PostgresRepository) Put(ctx context.Context, collection, key string, data map[string]any) error {
	query := `
		INSERT INTO documents (collection, key, data, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (collection, key)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now();
	`
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, key, err)
	}
	if _, err := r.db.ExecContext(ctx, query, collection, key, string(raw)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the document; deleting a missing one is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, collection, key string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND key = $2`
	if _, err := r.db.ExecContext(ctx, query, collection, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context, collection string) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE collection = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, query, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func decodeData(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
