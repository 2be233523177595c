package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

// StalenessOracle tells whether a user's cached copy of the collection is
// older than the last remote write.
type StalenessOracle struct {
	store  client.Store
	logger logging.Logger
}

func NewStalenessOracle(store client.Store, l logging.Logger) *StalenessOracle {
	return &StalenessOracle{store: store, logger: l.With("module", "staleness_oracle")}
}

// CollectionLastUpdated returns nil when the marker was never written.
func (o *StalenessOracle) CollectionLastUpdated(ctx context.Context) (*time.Time, error) {
	doc, err := o.store.GetByKey(ctx, common.MetadataCollection, common.SuppliesMetadataKey)
	if err != nil {
		return nil, fmt.Errorf("read collection marker: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	v, _ := doc.Data[common.FieldSuppliesLastUpdated].(string)
	t, err := common.ParseTimestamp(v)
	if err != nil {
		return nil, fmt.Errorf("%w: collection marker: %v", common.ErrValidation, err)
	}
	return t, nil
}

// MarkCollectionUpdated sets the marker to the store's current time, keeping
// the marker's creation time.
func (o *StalenessOracle) MarkCollectionUpdated(ctx context.Context) error {
	doc, err := o.store.GetByKey(ctx, common.MetadataCollection, common.SuppliesMetadataKey)
	if err != nil {
		return fmt.Errorf("read collection marker: %w", err)
	}

	data := map[string]any{
		common.FieldSuppliesLastUpdated: common.ServerTimestamp,
		common.FieldUpdatedAt:           common.ServerTimestamp,
		common.FieldCreatedAt:           common.ServerTimestamp,
	}
	if doc != nil {
		if created, ok := doc.Data[common.FieldCreatedAt].(string); ok && created != "" {
			data[common.FieldCreatedAt] = created
		}
	}

	if err := o.store.Upsert(ctx, common.MetadataCollection, common.SuppliesMetadataKey, data); err != nil {
		return fmt.Errorf("write collection marker: %w", err)
	}
	o.logger.Debug(ctx, "collection marked updated")
	return nil
}

// InitializeIfMissing creates the marker when absent. Connectivity failures
// are ignored.
func (o *StalenessOracle) InitializeIfMissing(ctx context.Context) error {
	t, err := o.CollectionLastUpdated(ctx)
	if err == nil && t != nil {
		return nil
	}
	if err == nil {
		err = o.MarkCollectionUpdated(ctx)
	}
	if err != nil && client.IsOffline(err) {
		o.logger.Info(ctx, "offline, collection marker not initialised")
		return nil
	}
	return err
}

// NeedsRefresh reports whether data written after userLastFetched exists.
// It is true when either marker is missing and false when the store is
// unreachable. Other read failures count as stale.
func (o *StalenessOracle) NeedsRefresh(ctx context.Context, userLastFetched *time.Time) (bool, error) {
	if userLastFetched == nil {
		return true, nil
	}

	global, err := o.CollectionLastUpdated(ctx)
	if err != nil {
		if client.IsOffline(err) {
			o.logger.Info(ctx, "offline, treating cache as fresh")
			return false, nil
		}
		o.logger.Warn(ctx, "cannot read collection marker, assuming stale", "err", err)
		return true, nil
	}
	if global == nil {
		return true, nil
	}
	return global.After(*userLastFetched), nil
}
