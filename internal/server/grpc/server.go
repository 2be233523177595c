// Package grpc serves the document store contract of internal/docstore.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/medsupply/internal/docstore"
	"github.com/dmitrijs2005/medsupply/internal/logging"
	"github.com/dmitrijs2005/medsupply/internal/server/documents"
	"github.com/dmitrijs2005/medsupply/internal/server/images"
	"google.golang.org/grpc"
)

// DocumentService is implemented by *documents.Service.
type DocumentService interface {
	FetchAll(ctx context.Context, collection string) ([]documents.Document, error)
	Get(ctx context.Context, collection, key string) (*documents.Document, error)
	Upsert(ctx context.Context, collection, key string, data map[string]any) error
	Delete(ctx context.Context, collection, key string) error
	CommitBatch(ctx context.Context, collection string, writes []documents.Document) error
	Count(ctx context.Context, collection string) (int, error)
	Ping(ctx context.Context) error
}

// ImagePresigner is implemented by *images.Presigner.
type ImagePresigner interface {
	PresignUpload(ctx context.Context, productCode, contentType string) (*images.Upload, error)
}

type GRPCServer struct {
	address   string
	docs      DocumentService
	images    ImagePresigner
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer builds the server. An empty secretKey disables token checks;
// a nil presigner makes PresignImageUpload return Unimplemented.
func NewGRPCServer(a string, l logging.Logger, docs DocumentService, img ImagePresigner, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		docs:      docs,
		images:    img,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	docstore.RegisterDocumentStoreServer(srv, s)
	return srv
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())
	return srv.Serve(listen)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}
