package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medsupply/internal/common"
)

// MaxBatchSize is the largest number of writes CommitBatch accepts.
const MaxBatchSize = common.MaxBatchSize

// Document is a keyed record of a remote collection.
type Document struct {
	Key  string
	Data map[string]any
}

// Write is one overwrite-or-create operation inside a batch.
type Write struct {
	Key  string
	Data map[string]any
}

// Store is the remote document collection seen by the sync core.
type Store interface {
	// FetchAll returns every document of collection ordered by key.
	FetchAll(ctx context.Context, collection string) ([]Document, error)
	// GetByKey returns nil, nil when the document does not exist.
	GetByKey(ctx context.Context, collection, key string) (*Document, error)
	Upsert(ctx context.Context, collection, key string, data map[string]any) error
	DeleteByKey(ctx context.Context, collection, key string) error
	// CommitBatch applies all writes or none of them.
	CommitBatch(ctx context.Context, collection string, writes []Write) error
	Count(ctx context.Context, collection string) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// ImageUpload is a presigned object-storage target for a supply image.
type ImageUpload struct {
	UploadURL string
	ImageURL  string
}

// ImagePresigner is implemented by stores that can hand out image upload URLs.
type ImagePresigner interface {
	PresignImageUpload(ctx context.Context, productCode, contentType string) (*ImageUpload, error)
}

func checkBatch(writes []Write) error {
	if len(writes) > MaxBatchSize {
		return fmt.Errorf("%d writes, max %d: %w", len(writes), MaxBatchSize, common.ErrBatchTooLarge)
	}
	for _, w := range writes {
		if w.Key == "" {
			return fmt.Errorf("%w: batch write without key", common.ErrValidation)
		}
	}
	return nil
}
