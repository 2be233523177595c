package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/cache"
	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/config"
	"github.com/dmitrijs2005/medsupply/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medsupply/internal/client/services"
	"github.com/dmitrijs2005/medsupply/internal/filex"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

const appName = "medsupply"

// newStore is a test seam for the remote store backend.
var newStore = func(ctx context.Context, c *config.Config) (client.Store, error) {
	switch c.StoreBackend {
	case config.BackendGRPC:
		return client.NewGRPCStore(c.ServerEndpointAddr, c.AccessToken, c.RequestTimeout)
	case config.BackendRedis:
		return client.OpenRedis(c.RedisAddr, c.RequestTimeout), nil
	case config.BackendMemory:
		return client.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
}

// logOutput is where the CLI writes its diagnostic log.
var logOutput io.Writer = os.Stderr

type App struct {
	config *config.Config
	logger logging.Logger
	out    io.Writer
	reader *bufio.Reader
	now    func() time.Time

	db       *sql.DB
	store    client.Store
	cache    *cache.SupplyCache
	oracle   *services.StalenessOracle
	fetcher  *services.SupplyFetcher
	access   *services.AccessControl
	supplies *services.SupplyService
	imports  *services.ImportService
	images   *services.ImageService
	watcher  *services.ConnectivityWatcher
}

func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	handler := slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: logging.ParseLevel(c.LogLevel)})
	logger := logging.NewSlogLogger(slog.New(handler))

	dbPath := c.DatabasePath
	if dbPath == "" {
		dir, err := filex.EnsureDataDir(appName)
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dir, "cache.db")
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store, err := newStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sc := cache.New(cache.NewSQLPersister(db), logger)
	if err := sc.Restore(ctx); err != nil {
		logger.Warn(ctx, "failed to restore local cache", "err", err)
	}

	oracle := services.NewStalenessOracle(store, logger)
	markers := services.NewFetchMarkers(store, metadata.NewSQLiteRepository(db), logger)
	fetcher := services.NewSupplyFetcher(store, sc, oracle, markers, logger)
	access := services.NewAccessControl(store, logger)
	supplies := services.NewSupplyService(store, sc, oracle, access, logger)
	importer := services.NewImporter(store, logger,
		services.WithChunkSize(c.ImportBatchSize),
		services.WithCommitRate(c.CommitRate),
	)

	a := &App{
		config:   c,
		logger:   logger,
		out:      out,
		reader:   bufio.NewReader(in),
		now:      time.Now,
		db:       db,
		store:    store,
		cache:    sc,
		oracle:   oracle,
		fetcher:  fetcher,
		access:   access,
		supplies: supplies,
		imports:  services.NewImportService(sc, importer, oracle, fetcher, access, logger),
		watcher:  services.NewConnectivityWatcher(store, c.OnlineCheckInterval, logger),
	}
	if p, ok := store.(client.ImagePresigner); ok {
		a.images = services.NewImageService(p, supplies, access, nil)
	}
	return a, nil
}

// Close flushes the cache and releases the store and database.
func (a *App) Close() error {
	return errors.Join(a.cache.Close(), a.store.Close(), a.db.Close())
}

// refresh runs a smart fetch; failures are reported and the cache is used.
func (a *App) refresh(ctx context.Context) services.FetchResult {
	res, err := a.fetcher.SmartFetch(ctx, a.config.UserID)
	if err != nil {
		a.logger.Warn(ctx, "refresh failed, using cached data", "err", err)
		fmt.Fprintf(a.out, "Warning: could not refresh supplies: %v\n", err)
		return services.FetchResult{Source: services.SourceCache, Count: a.cache.Len()}
	}
	if res.Source == services.SourceOfflineCache || res.Source == services.SourceEmpty {
		renderFetchResult(a.out, res)
	}
	return res
}
