// Package cache holds the local copy of the supply collection.
//
// Reads and writes happen in memory under a mutex, so every mutation is
// atomic with respect to readers. After each mutation the new snapshot is
// handed to a background writer that persists it; only the newest pending
// snapshot is written. Persistence failures are logged and never surface to
// callers.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

// Snapshot is the persisted state of the cache.
type Snapshot struct {
	Supplies []models.Supply
	LastSync *time.Time
}

// Persister stores and loads cache snapshots.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

type SupplyCache struct {
	mu       sync.RWMutex
	items    []models.Supply
	index    map[string]int
	lastSync *time.Time

	persister Persister
	logger    logging.Logger
	now       func() time.Time

	pmu      sync.Mutex
	pending  *Snapshot
	notify   chan struct{}
	flushReq chan chan struct{}
	quit     chan struct{}
	done     chan struct{}
	stop     sync.Once
}

// New creates an empty cache. A nil persister keeps the cache memory-only.
func New(p Persister, l logging.Logger) *SupplyCache {
	c := &SupplyCache{
		index:     map[string]int{},
		persister: p,
		logger:    l.With("module", "supply_cache"),
		now:       time.Now,
		notify:    make(chan struct{}, 1),
		flushReq:  make(chan chan struct{}),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if p != nil {
		go c.run()
	} else {
		close(c.done)
	}
	return c
}

// Restore loads the persisted snapshot, replacing the in-memory state.
func (c *SupplyCache) Restore(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}
	snap, err := c.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore cache: %w", err)
	}
	if snap == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setItems(snap.Supplies)
	c.lastSync = snap.LastSync
	return nil
}

// ReplaceAll swaps the whole content and stamps the last-sync time.
func (c *SupplyCache) ReplaceAll(records []models.Supply) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setItems(records)
	now := c.now()
	c.lastSync = &now
	c.enqueue()
}

// MergeNew appends the records whose key is not cached yet and returns how
// many were added.
func (c *SupplyCache) MergeNew(records []models.Supply) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, r := range records {
		if _, ok := c.index[r.ProductCode]; ok {
			continue
		}
		c.index[r.ProductCode] = len(c.items)
		c.items = append(c.items, r)
		added++
	}
	if added > 0 {
		now := c.now()
		c.lastSync = &now
		c.enqueue()
	}
	return added
}

// UpsertOne replaces the record with the same key in place, or appends it.
func (c *SupplyCache) UpsertOne(record models.Supply) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[record.ProductCode]; ok {
		c.items[i] = record
	} else {
		c.index[record.ProductCode] = len(c.items)
		c.items = append(c.items, record)
	}
	c.enqueue()
}

// DeleteOne removes key and reports whether it was present.
func (c *SupplyCache) DeleteOne(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		return false
	}
	items := make([]models.Supply, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	c.setItems(items)
	c.enqueue()
	return true
}

// Clear empties the cache and forgets the last-sync time.
func (c *SupplyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setItems(nil)
	c.lastSync = nil
	c.enqueue()
}

func (c *SupplyCache) All() []models.Supply {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Supply(nil), c.items...)
}

func (c *SupplyCache) Get(key string) (models.Supply, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[key]
	if !ok {
		return models.Supply{}, false
	}
	return c.items[i], true
}

// FindFold looks a key up ignoring case.
func (c *SupplyCache) FindFold(key string) (models.Supply, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.items {
		if strings.EqualFold(s.ProductCode, key) {
			return s, true
		}
	}
	return models.Supply{}, false
}

func (c *SupplyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the set of cached product codes.
func (c *SupplyCache) Keys() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]struct{}, len(c.index))
	for k := range c.index {
		out[k] = struct{}{}
	}
	return out
}

func (c *SupplyCache) LastSync() *time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastSync == nil {
		return nil
	}
	t := *c.lastSync
	return &t
}

// setItems copies records, dropping repeated keys. Caller holds c.mu.
func (c *SupplyCache) setItems(records []models.Supply) {
	c.items = make([]models.Supply, 0, len(records))
	c.index = make(map[string]int, len(records))
	for _, r := range records {
		if _, dup := c.index[r.ProductCode]; dup {
			continue
		}
		c.index[r.ProductCode] = len(c.items)
		c.items = append(c.items, r)
	}
}
