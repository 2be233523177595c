package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ProgressFunc receives import progress. It runs on the importing goroutine.
type ProgressFunc func(models.Progress)

// Importer uploads supplies in sequential, individually atomic chunks.
type Importer struct {
	store     client.Store
	logger    logging.Logger
	now       func() time.Time
	chunkSize int
	limiter   *rate.Limiter
}

type ImporterOption func(*Importer)

// WithChunkSize sets the number of records per commit, capped at
// client.MaxBatchSize.
func WithChunkSize(n int) ImporterOption {
	return func(i *Importer) {
		if n > 0 && n <= client.MaxBatchSize {
			i.chunkSize = n
		}
	}
}

// WithCommitRate paces chunk commits to perSecond commits per second.
func WithCommitRate(perSecond float64) ImporterOption {
	return func(i *Importer) {
		if perSecond > 0 {
			i.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithClock(now func() time.Time) ImporterOption {
	return func(i *Importer) { i.now = now }
}

func NewImporter(store client.Store, l logging.Logger, opts ...ImporterOption) *Importer {
	i := &Importer{
		store:     store,
		logger:    l.With("module", "importer"),
		now:       time.Now,
		chunkSize: client.MaxBatchSize,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// ImportBatch writes records to the supplies collection.
//
// Records with an invalid product code, and repeats of a code already seen in
// this batch, are reported in the stats and skipped. Existing records are
// overwritten only when overwrite is set (version+1, creation time kept);
// otherwise they are left alone. A failed commit stops the import and returns
// the stats so far with the error; chunks committed before stay committed.
func (i *Importer) ImportBatch(ctx context.Context, records []models.Supply, actorID string, overwrite bool, onProgress ProgressFunc) (*models.ImportStats, error) {
	importID := uuid.NewString()
	log := i.logger.With("import_id", importID, "actor", actorID)

	stats := &models.ImportStats{Errors: []string{}}
	total := len(records)
	if onProgress == nil {
		onProgress = func(models.Progress) {}
	}

	chunks := int(math.Ceil(float64(total) / float64(i.chunkSize)))
	log.Info(ctx, "import started", "records", total, "chunks", chunks, "overwrite", overwrite)

	seen := make(map[string]int, total)

	for chunk := 0; chunk < chunks; chunk++ {
		start := chunk * i.chunkSize
		end := min(start+i.chunkSize, total)

		writes := make([]client.Write, 0, end-start)
		var created, updated int

		for idx := start; idx < end; idx++ {
			rec := records[idx]
			stats.TotalProcessed++

			key, err := models.ValidateProductCode(rec.ProductCode)
			switch {
			case err != nil && strings.TrimSpace(rec.ProductCode) == "":
				stats.Errors = append(stats.Errors, fmt.Sprintf("Record %d: %v: %s", idx+1, err, rec.Label()))
			case err != nil:
				stats.Errors = append(stats.Errors, fmt.Sprintf("Record %d: %v", idx+1, err))
			case seen[key] > 0:
				stats.Errors = append(stats.Errors, fmt.Sprintf("Record %d: duplicate product code %s (first seen in record %d)", idx+1, key, seen[key]))
			default:
				seen[key] = idx + 1
				rec.ProductCode = key
				w, isNew, err := i.decide(ctx, rec, actorID, overwrite)
				if err != nil {
					stats.Errors = append(stats.Errors, fmt.Sprintf("Failed to process %s: %v", key, err))
					log.Warn(ctx, "record failed", "key", key, "err", err)
				} else if w == nil {
					stats.Skipped++
				} else {
					writes = append(writes, *w)
					if isNew {
						created++
					} else {
						updated++
					}
				}
			}

			current := idx + 1
			onProgress(models.Progress{
				Kind:       models.ProgressRecord,
				Current:    current,
				Total:      total,
				Percentage: int(math.Round(float64(current) / float64(total) * 100)),
				Chunk:      chunk,
				ChunkCount: chunks,
			})
		}

		if len(writes) > 0 {
			if i.limiter != nil {
				if err := i.limiter.Wait(ctx); err != nil {
					return stats, fmt.Errorf("import chunk %d/%d: %w", chunk+1, chunks, err)
				}
			}
			if err := i.store.CommitBatch(ctx, common.SuppliesCollection, writes); err != nil {
				log.Error(ctx, "chunk commit failed", "chunk", chunk+1, "writes", len(writes), "err", err)
				return stats, fmt.Errorf("import chunk %d/%d: %w", chunk+1, chunks, err)
			}
			stats.NewRecords += created
			stats.UpdatedRecords += updated
			log.Info(ctx, "chunk committed", "chunk", chunk+1, "writes", len(writes))
		}

		onProgress(models.Progress{
			Kind:       models.ProgressChunk,
			Current:    end,
			Total:      total,
			Percentage: int(math.Round(float64(chunk+1) / float64(chunks) * 100)),
			Chunk:      chunk,
			ChunkCount: chunks,
		})
	}

	log.Info(ctx, "import finished",
		"processed", stats.TotalProcessed, "new", stats.NewRecords, "updated", stats.UpdatedRecords,
		"skipped", stats.Skipped, "errors", len(stats.Errors))
	return stats, nil
}

// decide returns the write for rec, or nil when the record must be left alone.
func (i *Importer) decide(ctx context.Context, rec models.Supply, actorID string, overwrite bool) (*client.Write, bool, error) {
	doc, err := i.store.GetByKey(ctx, common.SuppliesCollection, rec.ProductCode)
	if err != nil {
		return nil, false, err
	}

	now := common.FormatTimestamp(i.now())
	stored := models.StoredSupply{
		Supply: rec,
		Meta:   models.ImportMetadata{CreatedAt: now, UpdatedAt: now, ImportedBy: actorID, Version: 1},
	}

	if doc == nil {
		return &client.Write{Key: rec.ProductCode, Data: models.EncodeSupply(stored)}, true, nil
	}
	if !overwrite {
		return nil, false, nil
	}

	existing, err := models.DecodeSupply(doc.Key, doc.Data)
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(existing.Meta.CreatedAt) != "" {
		stored.Meta.CreatedAt = existing.Meta.CreatedAt
	}
	stored.Meta.Version = existing.Meta.Version + 1
	return &client.Write{Key: rec.ProductCode, Data: models.EncodeSupply(stored)}, false, nil
}
