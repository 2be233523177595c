// Package documents stores keyed JSON documents grouped in collections and
// exposes them through a transactional service used by the gRPC server.
package documents

import (
	"context"

	"github.com/dmitrijs2005/medsupply/internal/dbx"
)

// Document is one stored record.
type Document struct {
	Key  string
	Data map[string]any
}

// Repository persists documents. Implementations are bound to a dbx.DBTX so
// the same code runs inside and outside a transaction.
type Repository interface {
	// List returns every document of collection ordered by key.
	List(ctx context.Context, collection string) ([]Document, error)
	// Get returns nil, nil when the document does not exist.
	Get(ctx context.Context, collection, key string) (*Document, error)
	Put(ctx context.Context, collection, key string, data map[string]any) error
	Delete(ctx context.Context, collection, key string) error
	Count(ctx context.Context, collection string) (int, error)
}

// RepositoryFactory binds a Repository to a connection or transaction.
type RepositoryFactory func(db dbx.DBTX) Repository
