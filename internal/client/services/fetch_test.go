package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tOld = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tNew = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	tNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return tNow }

func TestSmartFetch_FirstRunDownloads(t *testing.T) {
	h := newHarness(t)
	h.fetcher.now = fixedNow
	seedRemote(t, h.store, supplies(3)...)
	setGlobalMarker(t, h.store, tOld)

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Source: SourceRemote, Count: 3}, res)
	assert.Equal(t, 3, h.cache.Len())
	assert.Equal(t, 1, h.store.count("FetchAll"))
	assert.Equal(t, StateReady, h.fetcher.State())

	marker, err := h.markers.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.True(t, marker.Equal(tNow))
}

func TestSmartFetch_FreshCacheSkipsDownload(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(3)...)
	setGlobalMarker(t, h.store, tOld)
	setUserMarker(t, h.store, "u1", tNew)
	h.cache.ReplaceAll(supplies(3))

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, 3, res.Count)
	assert.Zero(t, h.store.count("FetchAll"))
}

func TestSmartFetch_StaleCacheDownloads(t *testing.T) {
	h := newHarness(t)
	h.fetcher.now = fixedNow
	seedRemote(t, h.store, supplies(5)...)
	setGlobalMarker(t, h.store, tNew)
	setUserMarker(t, h.store, "u1", tOld)
	h.cache.ReplaceAll(supplies(2))

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Source: SourceRemote, Count: 5}, res)
	assert.Equal(t, 5, h.cache.Len())

	// second call sees the fresh marker
	res, err = h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, 1, h.store.count("FetchAll"))
}

func TestSmartFetch_MissingGlobalMarkerDownloads(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(2)...)
	setUserMarker(t, h.store, "u1", tNew)
	h.cache.ReplaceAll(supplies(2))

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, 1, h.store.count("FetchAll"))
}

func TestSmartFetch_CacheWithoutMarkerIsTrusted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.fetcher.now = fixedNow
	seedRemote(t, h.store, supplies(4)...)
	h.cache.ReplaceAll(supplies(4))

	res, err := h.fetcher.SmartFetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Source: SourceCache, Count: 4}, res)
	assert.Zero(t, h.store.count("FetchAll"))

	global, err := h.oracle.CollectionLastUpdated(ctx)
	require.NoError(t, err)
	assert.NotNil(t, global)

	marker, err := h.markers.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.True(t, marker.Equal(tNow))
}

func TestSmartFetch_OfflineServesCache(t *testing.T) {
	h := newHarness(t)
	h.cache.ReplaceAll(supplies(3))
	h.store.setDown(client.ErrUnavailable)

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Contains(t, []FetchSource{SourceCache, SourceOfflineCache}, res.Source)
	assert.Equal(t, 3, h.cache.Len())
}

func TestSmartFetch_OfflineDuringDownload(t *testing.T) {
	h := newHarness(t)
	setGlobalMarker(t, h.store, tNew)
	setUserMarker(t, h.store, "u1", tOld)
	h.cache.ReplaceAll(supplies(2))
	h.store.failNext("FetchAll", client.ErrUnavailable)

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Source: SourceOfflineCache, Count: 2}, res)
	assert.Equal(t, 1, h.store.count("FetchAll"))
}

func TestSmartFetch_OfflineEmptyCache(t *testing.T) {
	h := newHarness(t)
	h.store.setDown(client.ErrUnavailable)

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Source: SourceEmpty, Count: 0}, res)
}

func TestSmartFetch_RetriesOnce(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(2)...)
	h.store.failNext("FetchAll", errors.New("permission denied"))

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Source: SourceRemote, Count: 2}, res)
	assert.Equal(t, 2, h.store.count("FetchAll"))
}

func TestSmartFetch_FailsAfterRetry(t *testing.T) {
	h := newHarness(t)
	h.cache.ReplaceAll(supplies(1))
	setGlobalMarker(t, h.store, tNew)
	setUserMarker(t, h.store, "u1", tOld)
	boom := errors.New("permission denied")
	h.store.failNext("FetchAll", boom, boom)

	_, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, h.store.count("FetchAll"))
	assert.Equal(t, StateIdle, h.fetcher.State())
	assert.Equal(t, 1, h.cache.Len(), "cache untouched")
}

func TestSmartFetch_MarkerReadFailureForcesDownload(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(2)...)
	h.cache.ReplaceAll(supplies(2))
	h.store.failNext("GetByKey:"+common.UsersCollection, errors.New("permission denied"))

	res, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, 1, h.store.count("FetchAll"))
}

func TestSmartFetch_SkipsUndecodableDocuments(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedRemote(t, h.store, supplies(2)...)
	require.NoError(t, h.store.Upsert(ctx, common.SuppliesCollection, "BROKEN", map[string]any{
		"schemaVersion": 1, "store": "not a number",
	}))

	res, err := h.fetcher.SmartFetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	_, ok := h.cache.Get("BROKEN")
	assert.False(t, ok)
}

func TestSmartFetch_ConcurrentCallersShareOneDownload(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(10)...)
	setGlobalMarker(t, h.store, tOld)
	h.store.gate = make(chan struct{})

	const callers = 5
	var wg sync.WaitGroup
	results := make([]FetchResult, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = h.fetcher.SmartFetch(context.Background(), "u1")
	}()
	require.Eventually(t, func() bool { return h.store.count("FetchAll") == 1 }, time.Second, time.Millisecond)
	assert.True(t, h.fetcher.Loading())

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.fetcher.SmartFetch(context.Background(), "u1")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(h.store.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 10, results[i].Count)
	}
	assert.Equal(t, 1, h.store.count("FetchAll"))
	assert.False(t, h.fetcher.Loading())
}

func TestSmartFetch_StateTransitions(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(1)...)

	var mu sync.Mutex
	var seen []FetchState
	h.fetcher.OnStateChange(func(s FetchState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	_, err := h.fetcher.SmartFetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []FetchState{StateChecking, StateFetching, StateReady}, seen)
}

func TestRefresh_AlwaysDownloads(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(3)...)
	setGlobalMarker(t, h.store, tOld)
	setUserMarker(t, h.store, "u1", tNew)
	h.cache.ReplaceAll(supplies(3))

	res, err := h.fetcher.Refresh(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, 1, h.store.count("FetchAll"))
}

func TestRefresh_DoesNotJoinSmartFetch(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(4)...)
	h.store.gate = make(chan struct{})

	var wg sync.WaitGroup
	var smart, refresh FetchResult
	var smartErr, refreshErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		smart, smartErr = h.fetcher.SmartFetch(context.Background(), "u1")
	}()
	require.Eventually(t, func() bool { return h.store.count("FetchAll") == 1 }, time.Second, time.Millisecond)

	go func() {
		defer wg.Done()
		refresh, refreshErr = h.fetcher.Refresh(context.Background(), "u1")
	}()
	require.Eventually(t, func() bool { return h.store.count("FetchAll") == 2 }, time.Second, time.Millisecond)
	close(h.store.gate)
	wg.Wait()

	require.NoError(t, smartErr)
	require.NoError(t, refreshErr)
	assert.Equal(t, SourceRemote, smart.Source)
	assert.Equal(t, SourceRemote, refresh.Source)
	assert.Equal(t, 4, refresh.Count)
	assert.False(t, h.fetcher.Loading())
}

func TestSmartFetch_CancelledCallerDoesNotFailOthers(t *testing.T) {
	h := newHarness(t)
	seedRemote(t, h.store, supplies(6)...)
	h.store.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := h.fetcher.SmartFetch(ctx, "u1")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return h.store.count("FetchAll") == 1 }, time.Second, time.Millisecond)

	type result struct {
		res FetchResult
		err error
	}
	second := make(chan result, 1)
	go func() {
		res, err := h.fetcher.SmartFetch(context.Background(), "u1")
		second <- result{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(h.store.gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 6, got.res.Count)
	assert.Equal(t, 1, h.store.count("FetchAll"))
	assert.Equal(t, 6, h.cache.Len())
}
