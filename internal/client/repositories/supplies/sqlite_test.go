package supplies

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/dbx"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE supplies (
    position            INTEGER PRIMARY KEY,
    product_code        TEXT NOT NULL,
    store               INTEGER NOT NULL DEFAULT 0,
    store_name          TEXT NOT NULL DEFAULT '',
    product_description TEXT NOT NULL DEFAULT '',
    category            TEXT NOT NULL DEFAULT '',
    unit_of_measure     TEXT NOT NULL DEFAULT '',
    image_url           TEXT NOT NULL DEFAULT '',
    expiry_date         TEXT NOT NULL DEFAULT ''
);`)
	require.NoError(t, err)
	return db
}

func sample() []models.Supply {
	return []models.Supply{
		{ProductCode: "Z-9", Store: 1, StoreName: "Main", ProductDescription: "Gauze", Category: "WOUND", UnitOfMeasure: "PK"},
		{ProductCode: "A-1", Store: 2, StoreName: "Annex", ProductDescription: "Syringe 5ml", Category: "INJ", UnitOfMeasure: "EA", ExpiryDate: "2026-03-01", ImageURL: "http://img/a1"},
	}
}

func TestReplaceAll_PreservesOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, sample()))
	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, sample(), got)
}

func TestReplaceAll_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, sample()))
	require.NoError(t, r.ReplaceAll(ctx, sample()))
	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NoError(t, r.ReplaceAll(ctx, nil))
	got, err = r.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReplaceAll_InsideFailedTxLeavesOldSnapshot(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, NewSQLiteRepository(db).ReplaceAll(ctx, sample()))

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := NewSQLiteRepository(tx).ReplaceAll(ctx, sample()[:1]); err != nil {
			return err
		}
		return sql.ErrConnDone
	})
	require.Error(t, err)

	got, err := NewSQLiteRepository(db).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestGetAll_DBError(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.GetAll(context.Background())
	require.ErrorContains(t, err, "failed to select supplies")
	require.ErrorContains(t, r.ReplaceAll(context.Background(), sample()), "failed to clear supplies")
}
