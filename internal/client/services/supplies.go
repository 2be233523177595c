package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/cache"
	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

// SupplyService handles single-record edits and read queries over the cache.
type SupplyService struct {
	store  client.Store
	cache  *cache.SupplyCache
	oracle *StalenessOracle
	access *AccessControl
	logger logging.Logger
	now    func() time.Time
}

func NewSupplyService(store client.Store, c *cache.SupplyCache, o *StalenessOracle, ac *AccessControl, l logging.Logger) *SupplyService {
	return &SupplyService{store: store, cache: c, oracle: o, access: ac, logger: l.With("module", "supply_service"), now: time.Now}
}

// Create adds a new supply. It fails with common.ErrConflict when a record
// with the same code (ignoring case) is cached or exists remotely.
func (s *SupplyService) Create(ctx context.Context, supply models.Supply, actorID string) (*models.StoredSupply, error) {
	if err := s.access.Require(ctx, actorID, models.PermEdit); err != nil {
		return nil, err
	}
	key, err := models.ValidateProductCode(supply.ProductCode)
	if err != nil {
		return nil, err
	}
	supply.ProductCode = key

	if existing, ok := s.cache.FindFold(key); ok {
		return nil, fmt.Errorf("%w: %s", common.ErrConflict, existing.ProductCode)
	}
	doc, err := s.store.GetByKey(ctx, common.SuppliesCollection, key)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", key, err)
	}
	if doc != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrConflict, key)
	}

	stored := s.newRecord(supply, actorID)
	if err := s.store.Upsert(ctx, common.SuppliesCollection, key, models.EncodeSupply(stored)); err != nil {
		return nil, fmt.Errorf("create %s: %w", key, err)
	}

	s.cache.UpsertOne(stored.Supply)
	s.touch(ctx)
	s.logger.Info(ctx, "supply created", "key", key, "actor", actorID)
	return &stored, nil
}

// Update writes supply over the record stored as originalKey. When the code
// changes the old record is removed and a new one (version 1) is created;
// the new code must be free.
func (s *SupplyService) Update(ctx context.Context, originalKey string, supply models.Supply, actorID string) (*models.StoredSupply, error) {
	if err := s.access.Require(ctx, actorID, models.PermEdit); err != nil {
		return nil, err
	}
	key, err := models.ValidateProductCode(supply.ProductCode)
	if err != nil {
		return nil, err
	}
	supply.ProductCode = key

	if key != originalKey {
		return s.rename(ctx, originalKey, supply, actorID)
	}

	doc, err := s.store.GetByKey(ctx, common.SuppliesCollection, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	stored := s.newRecord(supply, actorID)
	if doc != nil {
		existing, err := models.DecodeSupply(doc.Key, doc.Data)
		if err != nil {
			return nil, err
		}
		if existing.Meta.CreatedAt != "" {
			stored.Meta.CreatedAt = existing.Meta.CreatedAt
		}
		stored.Meta.Version = existing.Meta.Version + 1
	}

	if err := s.store.Upsert(ctx, common.SuppliesCollection, key, models.EncodeSupply(stored)); err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}

	s.cache.UpsertOne(stored.Supply)
	s.touch(ctx)
	s.logger.Info(ctx, "supply updated", "key", key, "version", stored.Meta.Version)
	return &stored, nil
}

func (s *SupplyService) rename(ctx context.Context, originalKey string, supply models.Supply, actorID string) (*models.StoredSupply, error) {
	newKey := supply.ProductCode
	if _, ok := s.cache.Get(newKey); ok {
		return nil, fmt.Errorf("%w: %s", common.ErrConflict, newKey)
	}
	doc, err := s.store.GetByKey(ctx, common.SuppliesCollection, newKey)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", newKey, err)
	}
	if doc != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrConflict, newKey)
	}

	if err := s.store.DeleteByKey(ctx, common.SuppliesCollection, originalKey); err != nil {
		return nil, fmt.Errorf("delete %s: %w", originalKey, err)
	}
	stored := s.newRecord(supply, actorID)
	if err := s.store.Upsert(ctx, common.SuppliesCollection, newKey, models.EncodeSupply(stored)); err != nil {
		return nil, fmt.Errorf("create %s: %w", newKey, err)
	}

	s.cache.DeleteOne(originalKey)
	s.cache.UpsertOne(stored.Supply)
	s.touch(ctx)
	s.logger.Info(ctx, "supply renamed", "from", originalKey, "to", newKey)
	return &stored, nil
}

func (s *SupplyService) Delete(ctx context.Context, key, actorID string) error {
	if err := s.access.Require(ctx, actorID, models.PermDelete); err != nil {
		return err
	}
	if err := s.store.DeleteByKey(ctx, common.SuppliesCollection, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.cache.DeleteOne(key)
	s.touch(ctx)
	s.logger.Info(ctx, "supply deleted", "key", key, "actor", actorID)
	return nil
}

// Get reads from the cache.
func (s *SupplyService) Get(key string) (models.Supply, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return models.Supply{}, fmt.Errorf("%s: %w", key, common.ErrorNotFound)
	}
	return v, nil
}

func (s *SupplyService) List() []models.Supply {
	return s.cache.All()
}

// Search matches query case-insensitively against code, description,
// category and store name. An empty query returns everything.
func (s *SupplyService) Search(query string) []models.Supply {
	return s.Filter(query, "")
}

// ByCategory returns supplies whose category contains category, ignoring case.
func (s *SupplyService) ByCategory(category string) []models.Supply {
	return s.Filter("", category)
}

// Filter combines Search and ByCategory; empty arguments match everything.
func (s *SupplyService) Filter(query, category string) []models.Supply {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(category))
	out := []models.Supply{}
	for _, v := range s.cache.All() {
		if c != "" && !strings.Contains(strings.ToLower(v.Category), c) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(v.ProductCode), q) &&
			!strings.Contains(strings.ToLower(v.ProductDescription), q) &&
			!strings.Contains(strings.ToLower(v.Category), q) &&
			!strings.Contains(strings.ToLower(v.StoreName), q) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Categories lists the distinct cached categories, sorted.
func (s *SupplyService) Categories() []string {
	set := map[string]struct{}{}
	for _, v := range s.cache.All() {
		set[v.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// RemoteCount asks the store for the collection size.
func (s *SupplyService) RemoteCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx, common.SuppliesCollection)
}

func (s *SupplyService) newRecord(supply models.Supply, actorID string) models.StoredSupply {
	now := common.FormatTimestamp(s.now())
	return models.StoredSupply{
		Supply: supply,
		Meta:   models.ImportMetadata{CreatedAt: now, UpdatedAt: now, ImportedBy: actorID, Version: 1},
	}
}

func (s *SupplyService) touch(ctx context.Context) {
	if err := s.oracle.MarkCollectionUpdated(ctx); err != nil {
		s.logger.Warn(ctx, "failed to mark collection updated", "err", err)
	}
}
