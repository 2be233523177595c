package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/dbx"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

// DB is satisfied by *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxStarter
}

// Service validates requests, resolves server timestamps and runs batches in
// one transaction.
type Service struct {
	db      DB
	newRepo RepositoryFactory
	now     func() time.Time
	logger  logging.Logger
}

func NewService(db DB, l logging.Logger) *Service {
	return &Service{
		db:      db,
		newRepo: func(db dbx.DBTX) Repository { return NewPostgresRepository(db) },
		now:     time.Now,
		logger:  l.With("module", "documents"),
	}
}

func validateCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("%w: empty collection", common.ErrValidation)
	}
	return nil
}

func validateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return fmt.Errorf("%w: empty key", common.ErrValidation)
	case strings.Contains(key, "/"):
		return fmt.Errorf("%w: key %q contains '/'", common.ErrValidation, key)
	}
	return nil
}

func (s *Service) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	return s.newRepo(s.db).List(ctx, collection)
}

func (s *Service) Get(ctx context.Context, collection, key string) (*Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return s.newRepo(s.db).Get(ctx, collection, key)
}

func (s *Service) Upsert(ctx context.Context, collection, key string, data map[string]any) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return s.newRepo(s.db).Put(ctx, collection, key, common.ResolveServerTimestamps(data, s.now()))
}

func (s *Service) Delete(ctx context.Context, collection, key string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return s.newRepo(s.db).Delete(ctx, collection, key)
}

// CommitBatch writes all documents or none. Every placeholder in the batch
// resolves to the same time.
func (s *Service) CommitBatch(ctx context.Context, collection string, writes []Document) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if len(writes) > common.MaxBatchSize {
		return fmt.Errorf("%d writes, max %d: %w", len(writes), common.MaxBatchSize, common.ErrBatchTooLarge)
	}
	for _, w := range writes {
		if err := validateKey(w.Key); err != nil {
			return err
		}
	}
	if len(writes) == 0 {
		return nil
	}

	now := s.now()
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		for _, w := range writes {
			if err := repo.Put(ctx, collection, w.Key, common.ResolveServerTimestamps(w.Data, now)); err != nil {
				return fmt.Errorf("write %s: %w", w.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "batch commit failed", "collection", collection, "writes", len(writes), "err", err)
		return err
	}
	s.logger.Info(ctx, "batch committed", "collection", collection, "writes", len(writes))
	return nil
}

func (s *Service) Count(ctx context.Context, collection string) (int, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	return s.newRepo(s.db).Count(ctx, collection)
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
