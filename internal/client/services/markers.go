package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

// FetchMarkers stores per-user "last fetched" markers in the users collection
// and mirrors them locally for offline reads.
type FetchMarkers struct {
	store  client.Store
	local  metadata.Repository
	logger logging.Logger
}

// NewFetchMarkers creates the marker service. local may be nil.
func NewFetchMarkers(store client.Store, local metadata.Repository, l logging.Logger) *FetchMarkers {
	return &FetchMarkers{store: store, local: local, logger: l.With("module", "fetch_markers")}
}

// Get returns nil when the user never fetched. When the store is offline the
// local mirror answers.
func (m *FetchMarkers) Get(ctx context.Context, userID string) (*time.Time, error) {
	doc, err := m.store.GetByKey(ctx, common.UsersCollection, userID)
	if err != nil {
		if client.IsOffline(err) {
			return m.getLocal(ctx, userID)
		}
		return nil, fmt.Errorf("read fetch marker of %s: %w", userID, err)
	}
	if doc == nil {
		return nil, nil
	}
	v, _ := doc.Data[common.FieldSuppliesLastFetched].(string)
	t, err := common.ParseTimestamp(v)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch marker of %s: %v", common.ErrValidation, userID, err)
	}
	return t, nil
}

// Set writes the marker locally, then remotely. Other fields of the user
// document are preserved.
func (m *FetchMarkers) Set(ctx context.Context, userID string, at time.Time) error {
	if m.local != nil {
		if err := m.local.SetTime(ctx, metadata.FetchMarkerKey(userID), &at); err != nil {
			m.logger.Warn(ctx, "failed to mirror fetch marker", "user", userID, "err", err)
		}
	}

	doc, err := m.store.GetByKey(ctx, common.UsersCollection, userID)
	if err != nil {
		return fmt.Errorf("read user %s: %w", userID, err)
	}
	data := map[string]any{}
	if doc != nil {
		for k, v := range doc.Data {
			data[k] = v
		}
	}
	data[common.FieldSuppliesLastFetched] = common.FormatTimestamp(at)

	if err := m.store.Upsert(ctx, common.UsersCollection, userID, data); err != nil {
		return fmt.Errorf("write fetch marker of %s: %w", userID, err)
	}
	return nil
}

func (m *FetchMarkers) getLocal(ctx context.Context, userID string) (*time.Time, error) {
	if m.local == nil {
		return nil, nil
	}
	return m.local.GetTime(ctx, metadata.FetchMarkerKey(userID))
}
