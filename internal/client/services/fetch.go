package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/cache"
	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/logging"
	"golang.org/x/sync/singleflight"
)

// FetchState is the smart-fetch state machine position.
type FetchState string

const (
	StateIdle            FetchState = "idle"
	StateChecking        FetchState = "checking"
	StateServeCache      FetchState = "serve_cache"
	StateFetching        FetchState = "fetching"
	StateOfflineFallback FetchState = "offline_fallback"
	StateReady           FetchState = "ready"
)

// FetchSource says where the result of a smart fetch came from.
type FetchSource string

const (
	SourceCache        FetchSource = "cache"
	SourceRemote       FetchSource = "remote"
	SourceOfflineCache FetchSource = "offline_cache"
	SourceEmpty        FetchSource = "empty"
)

type FetchResult struct {
	Source FetchSource
	Count  int
}

// SupplyFetcher keeps the cache in sync with the remote collection while
// avoiding full downloads when nothing changed.
type SupplyFetcher struct {
	store   client.Store
	cache   *cache.SupplyCache
	oracle  *StalenessOracle
	markers *FetchMarkers
	logger  logging.Logger
	now     func() time.Time

	group    singleflight.Group
	inflight atomic.Int32

	mu       sync.Mutex
	state    FetchState
	onChange func(FetchState)
}

func NewSupplyFetcher(store client.Store, c *cache.SupplyCache, o *StalenessOracle, m *FetchMarkers, l logging.Logger) *SupplyFetcher {
	return &SupplyFetcher{
		store:   store,
		cache:   c,
		oracle:  o,
		markers: m,
		logger:  l.With("module", "supply_fetcher"),
		now:     time.Now,
		state:   StateIdle,
	}
}

// OnStateChange registers fn to observe state transitions.
func (f *SupplyFetcher) OnStateChange(fn func(FetchState)) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

func (f *SupplyFetcher) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Loading is true while a smart fetch is in flight.
func (f *SupplyFetcher) Loading() bool {
	return f.inflight.Load() > 0
}

func (f *SupplyFetcher) setState(s FetchState) {
	f.mu.Lock()
	f.state = s
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Single-flight keys. SmartFetch and Refresh never join each other.
const (
	flightSmartFetch = "smart-fetch"
	flightRefresh    = "refresh"
)

// shared runs fn once per key for all concurrent callers. The run is detached
// from the first caller's cancellation; each caller stops waiting when its
// own ctx is done.
func (f *SupplyFetcher) shared(ctx context.Context, key string, fn func(context.Context) (FetchResult, error)) (FetchResult, error) {
	ch := f.group.DoChan(key, func() (any, error) {
		f.inflight.Add(1)
		defer f.inflight.Add(-1)
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return FetchResult{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			f.logger.Debug(ctx, "joined in-flight fetch", "key", key)
		}
		if r.Err != nil {
			return FetchResult{}, r.Err
		}
		return r.Val.(FetchResult), nil
	}
}

// SmartFetch brings the cache up to date for userID. Concurrent callers share
// one in-flight run and its result.
func (f *SupplyFetcher) SmartFetch(ctx context.Context, userID string) (FetchResult, error) {
	return f.shared(ctx, flightSmartFetch, func(ctx context.Context) (FetchResult, error) {
		return f.smartFetch(ctx, userID)
	})
}

func (f *SupplyFetcher) smartFetch(ctx context.Context, userID string) (FetchResult, error) {
	f.setState(StateChecking)

	lastFetched, markerErr := f.markers.Get(ctx, userID)
	if markerErr != nil {
		f.logger.Warn(ctx, "cannot read fetch marker, forcing fetch", "user", userID, "err", markerErr)
	}
	hasLocal := f.cache.Len() > 0

	// cache present but no marker: keep the cache and start tracking from now
	if lastFetched == nil && hasLocal && markerErr == nil {
		f.logger.Warn(ctx, "cache present without fetch marker, serving cache", "user", userID, "records", f.cache.Len())
		if err := f.oracle.InitializeIfMissing(ctx); err != nil {
			f.logger.Warn(ctx, "failed to initialise collection marker", "err", err)
		}
		f.setMarker(ctx, userID)
		return f.serveCache(SourceCache), nil
	}

	needs, err := f.oracle.NeedsRefresh(ctx, lastFetched)
	if err != nil {
		f.setState(StateIdle)
		return FetchResult{}, err
	}
	if !needs && hasLocal {
		f.setState(StateServeCache)
		return f.serveCache(SourceCache), nil
	}

	f.setState(StateFetching)
	res, err := f.fetchRemote(ctx, userID)
	if err == nil {
		return res, nil
	}
	if client.IsOffline(err) {
		return f.offlineFallback(ctx, err), nil
	}

	f.logger.Warn(ctx, "fetch failed, retrying once", "err", err)
	res, err = f.fetchRemote(ctx, userID)
	if err == nil {
		return res, nil
	}
	if client.IsOffline(err) {
		return f.offlineFallback(ctx, err), nil
	}
	f.logger.Error(ctx, "fetch failed", "err", err)
	f.setState(StateIdle)
	return FetchResult{}, fmt.Errorf("fetch supplies: %w", err)
}

// Refresh replaces the cache from the remote collection unconditionally.
func (f *SupplyFetcher) Refresh(ctx context.Context, userID string) (FetchResult, error) {
	res, err := f.shared(ctx, flightRefresh, func(ctx context.Context) (FetchResult, error) {
		f.setState(StateFetching)
		res, err := f.fetchRemote(ctx, userID)
		if err != nil {
			if client.IsOffline(err) {
				return f.offlineFallback(ctx, err), nil
			}
			f.setState(StateIdle)
			return FetchResult{}, err
		}
		return res, nil
	})
	if err != nil {
		return FetchResult{}, fmt.Errorf("refresh supplies: %w", err)
	}
	return res, nil
}

func (f *SupplyFetcher) fetchRemote(ctx context.Context, userID string) (FetchResult, error) {
	docs, err := f.store.FetchAll(ctx, common.SuppliesCollection)
	if err != nil {
		return FetchResult{}, err
	}

	records := make([]models.Supply, 0, len(docs))
	for _, d := range docs {
		s, err := models.DecodeSupply(d.Key, d.Data)
		if err != nil {
			f.logger.Warn(ctx, "skipping undecodable supply", "key", d.Key, "err", err)
			continue
		}
		records = append(records, s.Supply)
	}

	f.cache.ReplaceAll(records)
	f.setMarker(ctx, userID)
	f.logger.Info(ctx, "supplies fetched", "records", len(records))

	f.setState(StateReady)
	return FetchResult{Source: SourceRemote, Count: len(records)}, nil
}

func (f *SupplyFetcher) setMarker(ctx context.Context, userID string) {
	if err := f.markers.Set(ctx, userID, f.now()); err != nil {
		if client.IsOffline(err) {
			f.logger.Info(ctx, "offline, fetch marker kept locally", "user", userID)
			return
		}
		f.logger.Warn(ctx, "failed to update fetch marker", "user", userID, "err", err)
	}
}

func (f *SupplyFetcher) offlineFallback(ctx context.Context, cause error) FetchResult {
	f.setState(StateOfflineFallback)
	f.logger.Info(ctx, "offline, serving cached supplies", "err", cause, "records", f.cache.Len())
	if f.cache.Len() == 0 {
		return f.serveCache(SourceEmpty)
	}
	return f.serveCache(SourceOfflineCache)
}

func (f *SupplyFetcher) serveCache(src FetchSource) FetchResult {
	f.setState(StateReady)
	return FetchResult{Source: src, Count: f.cache.Len()}
}
