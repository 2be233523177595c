// Package server wires configuration, the document database, image storage
// and the gRPC endpoint into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/medsupply/internal/logging"
	"github.com/dmitrijs2005/medsupply/internal/server/auth"
	"github.com/dmitrijs2005/medsupply/internal/server/config"
	"github.com/dmitrijs2005/medsupply/internal/server/documents"
	"github.com/dmitrijs2005/medsupply/internal/server/images"

	gs "github.com/dmitrijs2005/medsupply/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = documents.Open

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *gs.GRPCServer
}

func newLogger(level string) logging.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(level)})
	return logging.NewSlogLogger(slog.New(h))
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := newLogger(c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var presigner gs.ImagePresigner
	if c.ImagesEnabled() {
		presigner = images.NewPresigner(images.Settings{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	} else {
		logger.Warn(ctx, "image storage not configured, uploads disabled")
	}
	if c.SecretKey == "" {
		logger.Warn(ctx, "no secret key configured, requests are not authenticated")
	}

	docs := documents.NewService(db, logger)
	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, docs, presigner, c.SecretKey)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

// Run serves until ctx is cancelled, then closes the database.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "close database", "err", err)
		}
	}()
	return app.server.Run(ctx)
}

// IssueToken writes a signed access token for c.IssueToken to w.
func IssueToken(w io.Writer, c *config.Config) error {
	tok, err := auth.GenerateToken(c.IssueToken, []byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, tok)
	return err
}
