package services

import (
	"context"

	"github.com/dmitrijs2005/medsupply/internal/client/cache"
	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

// ImportMode selects how records that already exist are treated.
type ImportMode int

const (
	// ImportNewOnly uploads only the records whose code is not cached.
	ImportNewOnly ImportMode = iota
	// ImportOverwrite uploads everything, replacing existing records.
	ImportOverwrite
)

// ImportService runs a spreadsheet import end to end: duplicate preview,
// chunked upload, collection marker bump and cache refresh.
type ImportService struct {
	cache    *cache.SupplyCache
	importer *Importer
	oracle   *StalenessOracle
	fetcher  *SupplyFetcher
	access   *AccessControl
	logger   logging.Logger
}

func NewImportService(c *cache.SupplyCache, i *Importer, o *StalenessOracle, f *SupplyFetcher, ac *AccessControl, l logging.Logger) *ImportService {
	return &ImportService{cache: c, importer: i, oracle: o, fetcher: f, access: ac, logger: l.With("module", "import_service")}
}

// Preview partitions candidates against the cached product codes.
func (s *ImportService) Preview(candidates []models.Supply) models.DuplicateCheckResult {
	return Reconcile(candidates, s.cache.Keys())
}

// Run imports candidates for userID. Marker and refresh failures after a
// successful upload are logged, not returned.
func (s *ImportService) Run(ctx context.Context, candidates []models.Supply, userID string, mode ImportMode, onProgress ProgressFunc) (*models.ImportStats, error) {
	if err := s.access.Require(ctx, userID, models.PermUpload); err != nil {
		return nil, err
	}
	records := candidates
	overwrite := mode == ImportOverwrite
	if !overwrite {
		records = s.Preview(candidates).NewItems
	}

	stats, err := s.importer.ImportBatch(ctx, records, userID, overwrite, onProgress)
	if stats != nil && stats.HasWrites() {
		if merr := s.oracle.MarkCollectionUpdated(ctx); merr != nil {
			s.logger.Warn(ctx, "failed to mark collection updated", "err", merr)
		}
		if _, ferr := s.fetcher.SmartFetch(ctx, userID); ferr != nil {
			s.logger.Warn(ctx, "refresh after import failed", "err", ferr)
		}
	}
	return stats, err
}
