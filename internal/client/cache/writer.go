package cache

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
)

const saveTimeout = 30 * time.Second

// enqueue hands the current state to the writer. Caller holds c.mu.
func (c *SupplyCache) enqueue() {
	if c.persister == nil {
		return
	}
	snap := Snapshot{Supplies: append([]models.Supply(nil), c.items...)}
	if c.lastSync != nil {
		t := *c.lastSync
		snap.LastSync = &t
	}

	c.pmu.Lock()
	c.pending = &snap
	c.pmu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *SupplyCache) run() {
	defer close(c.done)
	for {
		select {
		case <-c.notify:
			c.persistPending()
		case reply := <-c.flushReq:
			c.persistPending()
			close(reply)
		case <-c.quit:
			c.persistPending()
			return
		}
	}
}

func (c *SupplyCache) persistPending() {
	c.pmu.Lock()
	snap := c.pending
	c.pending = nil
	c.pmu.Unlock()

	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := c.persister.Save(ctx, *snap); err != nil {
		c.logger.Error(ctx, "failed to persist supply cache", "err", err, "records", len(snap.Supplies))
		return
	}
	c.logger.Debug(ctx, "supply cache persisted", "records", len(snap.Supplies))
}

// Flush blocks until every mutation made before the call is persisted or
// ctx is done.
func (c *SupplyCache) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case c.flushReq <- reply:
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close persists any pending snapshot and stops the writer.
func (c *SupplyCache) Close() error {
	c.stop.Do(func() {
		if c.persister != nil {
			close(c.quit)
		}
	})
	<-c.done
	return nil
}
