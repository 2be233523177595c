package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/cache"
	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeStore wraps MemoryStore with call counting and scripted failures.
type fakeStore struct {
	*client.MemoryStore

	mu    sync.Mutex
	calls map[string]int
	errs  map[string][]error
	down  error
	gate  chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemoryStore: client.NewMemoryStore(), calls: map[string]int{}, errs: map[string][]error{}}
}

func (f *fakeStore) failNext(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = append(f.errs[op], errs...)
}

func (f *fakeStore) setDown(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = err
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) next(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.down != nil {
		return f.down
	}
	if q := f.errs[op]; len(q) > 0 {
		f.errs[op] = q[1:]
		return q[0]
	}
	return nil
}

func (f *fakeStore) FetchAll(ctx context.Context, collection string) ([]client.Document, error) {
	if err := f.next("FetchAll"); err != nil {
		return nil, err
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.MemoryStore.FetchAll(ctx, collection)
}

func (f *fakeStore) GetByKey(ctx context.Context, collection, key string) (*client.Document, error) {
	if err := f.next("GetByKey:" + collection); err != nil {
		return nil, err
	}
	return f.MemoryStore.GetByKey(ctx, collection, key)
}

func (f *fakeStore) Upsert(ctx context.Context, collection, key string, data map[string]any) error {
	if err := f.next("Upsert:" + collection); err != nil {
		return err
	}
	return f.MemoryStore.Upsert(ctx, collection, key, data)
}

func (f *fakeStore) DeleteByKey(ctx context.Context, collection, key string) error {
	if err := f.next("DeleteByKey"); err != nil {
		return err
	}
	return f.MemoryStore.DeleteByKey(ctx, collection, key)
}

func (f *fakeStore) CommitBatch(ctx context.Context, collection string, writes []client.Write) error {
	if err := f.next("CommitBatch"); err != nil {
		return err
	}
	return f.MemoryStore.CommitBatch(ctx, collection, writes)
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if err := f.next("Ping"); err != nil {
		return err
	}
	return f.MemoryStore.Ping(ctx)
}

func supplyN(i int) models.Supply {
	return models.Supply{
		ProductCode:        fmt.Sprintf("P%05d", i),
		Store:              1,
		StoreName:          "Main",
		ProductDescription: fmt.Sprintf("item %d", i),
		Category:           "GENERAL",
		UnitOfMeasure:      "EA",
	}
}

func supplies(n int) []models.Supply {
	out := make([]models.Supply, n)
	for i := range out {
		out[i] = supplyN(i)
	}
	return out
}

// seedRemote writes records as current-schema documents.
func seedRemote(t *testing.T, s client.Store, records ...models.Supply) {
	t.Helper()
	for _, r := range records {
		doc := models.EncodeSupply(models.StoredSupply{Supply: r, Meta: models.ImportMetadata{
			CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z", ImportedBy: "seed", Version: 1,
		}})
		require.NoError(t, s.Upsert(context.Background(), common.SuppliesCollection, r.ProductCode, doc))
	}
}

func setGlobalMarker(t *testing.T, s client.Store, at time.Time) {
	t.Helper()
	require.NoError(t, s.Upsert(context.Background(), common.MetadataCollection, common.SuppliesMetadataKey, map[string]any{
		common.FieldSuppliesLastUpdated: common.FormatTimestamp(at),
	}))
}

func setUserMarker(t *testing.T, s client.Store, user string, at time.Time) {
	t.Helper()
	require.NoError(t, s.Upsert(context.Background(), common.UsersCollection, user, map[string]any{
		common.FieldSuppliesLastFetched: common.FormatTimestamp(at),
	}))
}

type harness struct {
	store   *fakeStore
	cache   *cache.SupplyCache
	oracle  *StalenessOracle
	markers *FetchMarkers
	fetcher *SupplyFetcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	l := logging.Discard()
	s := newFakeStore()
	c := cache.New(nil, l)
	o := NewStalenessOracle(s, l)
	m := NewFetchMarkers(s, nil, l)
	return &harness{store: s, cache: c, oracle: o, markers: m, fetcher: NewSupplyFetcher(s, c, o, m, l)}
}
