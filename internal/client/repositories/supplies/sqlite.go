package supplies

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ReplaceAll deletes every stored supply and inserts items in order.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Supply) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM supplies`); err != nil {
		return fmt.Errorf("failed to clear supplies: %w", err)
	}

	query := `INSERT INTO supplies (position, product_code, store, store_name, product_description,
			category, unit_of_measure, image_url, expiry_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, s := range items {
		_, err := r.db.ExecContext(ctx, query, i, s.ProductCode, s.Store, s.StoreName, s.ProductDescription,
			s.Category, s.UnitOfMeasure, s.ImageURL, s.ExpiryDate)
		if err != nil {
			return fmt.Errorf("failed to insert supply %s: %w", s.ProductCode, err)
		}
	}
	return nil
}

// GetAll returns the stored snapshot in its original order.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Supply, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product_code, store, store_name, product_description,
			category, unit_of_measure, image_url, expiry_date
			FROM supplies ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to select supplies: %w", err)
	}
	defer rows.Close()

	var result []models.Supply
	for rows.Next() {
		var s models.Supply
		if err := rows.Scan(&s.ProductCode, &s.Store, &s.StoreName, &s.ProductDescription,
			&s.Category, &s.UnitOfMeasure, &s.ImageURL, &s.ExpiryDate); err != nil {
			return nil, fmt.Errorf("failed to scan supply: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate supplies: %w", err)
	}
	return result, nil
}
