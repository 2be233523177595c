package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/common"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]map[string]map[string]any{}, now: time.Now}
}

// WithClock replaces the clock used to resolve server timestamps.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.collections[collection]))
	for k, v := range s.collections[collection] {
		docs = append(docs, Document{Key: k, Data: copyData(v)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

func (s *MemoryStore) GetByKey(ctx context.Context, collection, key string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.collections[collection][key]
	if !ok {
		return nil, nil
	}
	return &Document{Key: key, Data: copyData(v)}, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, collection, key string, data map[string]any) error {
	return s.CommitBatch(ctx, collection, []Write{{Key: key, Data: data}})
}

func (s *MemoryStore) DeleteByKey(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], key)
	return nil
}

func (s *MemoryStore) CommitBatch(ctx context.Context, collection string, writes []Write) error {
	if err := checkBatch(writes); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = map[string]map[string]any{}
		s.collections[collection] = c
	}
	now := s.now()
	for _, w := range writes {
		c[w.Key] = common.ResolveServerTimestamps(w.Data, now)
	}
	return nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

func copyData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
