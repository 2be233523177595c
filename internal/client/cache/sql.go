package cache

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medsupply/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medsupply/internal/client/repositories/supplies"
	"github.com/dmitrijs2005/medsupply/internal/dbx"
)

// SQLPersister stores snapshots in the local SQLite database.
type SQLPersister struct {
	db *sql.DB
}

func NewSQLPersister(db *sql.DB) *SQLPersister {
	return &SQLPersister{db: db}
}

func (p *SQLPersister) Load(ctx context.Context) (*Snapshot, error) {
	items, err := supplies.NewSQLiteRepository(p.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	lastSync, err := metadata.NewSQLiteRepository(p.db).GetTime(ctx, metadata.KeyLastSync)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Supplies: items, LastSync: lastSync}, nil
}

// Save replaces the stored snapshot and last-sync time in one transaction.
func (p *SQLPersister) Save(ctx context.Context, s Snapshot) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := supplies.NewSQLiteRepository(tx).ReplaceAll(ctx, s.Supplies); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).SetTime(ctx, metadata.KeyLastSync, s.LastSync)
	})
}
