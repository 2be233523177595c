package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/docstore"
	"github.com/dmitrijs2005/medsupply/internal/server/documents"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC codes the client understands.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrBatchTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "request failed", "op", op, "err", err)
	return status.Error(codes.Internal, "internal error")
}

func reply(fields map[string]any) (*structpb.Struct, error) {
	msg, err := docstore.NewMessage(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return msg, nil
}

func (s *GRPCServer) FetchAll(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection := docstore.String(in, docstore.FieldCollection)
	docs, err := s.docs.FetchAll(ctx, collection)
	if err != nil {
		return nil, s.toStatus(ctx, "FetchAll", err)
	}

	entries := make([]docstore.Entry, len(docs))
	for i, d := range docs {
		entries[i] = docstore.Entry{Key: d.Key, Data: d.Data}
	}
	return reply(map[string]any{docstore.FieldDocuments: docstore.EntriesValue(entries)})
}

func (s *GRPCServer) GetByKey(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	doc, err := s.docs.Get(ctx, docstore.String(in, docstore.FieldCollection), docstore.String(in, docstore.FieldKey))
	if err != nil {
		return nil, s.toStatus(ctx, "GetByKey", err)
	}
	if doc == nil {
		return reply(map[string]any{docstore.FieldFound: false})
	}
	return reply(map[string]any{docstore.FieldFound: true, docstore.FieldDocument: doc.Data})
}

func (s *GRPCServer) Upsert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection := docstore.String(in, docstore.FieldCollection)
	key := docstore.String(in, docstore.FieldKey)
	if err := s.docs.Upsert(ctx, collection, key, docstore.Map(in, docstore.FieldData)); err != nil {
		return nil, s.toStatus(ctx, "Upsert", err)
	}
	return reply(nil)
}

func (s *GRPCServer) DeleteByKey(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection := docstore.String(in, docstore.FieldCollection)
	key := docstore.String(in, docstore.FieldKey)
	if err := s.docs.Delete(ctx, collection, key); err != nil {
		return nil, s.toStatus(ctx, "DeleteByKey", err)
	}
	return reply(nil)
}

func (s *GRPCServer) CommitBatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	entries, err := docstore.Entries(in, docstore.FieldWrites)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	writes := make([]documents.Document, len(entries))
	for i, e := range entries {
		writes[i] = documents.Document{Key: e.Key, Data: e.Data}
	}

	collection := docstore.String(in, docstore.FieldCollection)
	if err := s.docs.CommitBatch(ctx, collection, writes); err != nil {
		return nil, s.toStatus(ctx, "CommitBatch", err)
	}
	user, _ := UserIDFromContext(ctx)
	s.logger.Info(ctx, "batch committed", "collection", collection, "writes", len(writes), "user", user)
	return reply(nil)
}

func (s *GRPCServer) Count(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	n, err := s.docs.Count(ctx, docstore.String(in, docstore.FieldCollection))
	if err != nil {
		return nil, s.toStatus(ctx, "Count", err)
	}
	return reply(map[string]any{docstore.FieldCount: n})
}

func (s *GRPCServer) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.docs.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "err", err)
		return nil, status.Error(codes.Unavailable, "database unavailable")
	}
	return reply(map[string]any{docstore.FieldStatus: "OK"})
}

func (s *GRPCServer) PresignImageUpload(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.images == nil {
		return nil, status.Error(codes.Unimplemented, "image storage is not configured")
	}
	up, err := s.images.PresignUpload(ctx,
		docstore.String(in, docstore.FieldProductCode),
		docstore.String(in, docstore.FieldContentType))
	if err != nil {
		return nil, s.toStatus(ctx, "PresignImageUpload", err)
	}
	return reply(map[string]any{
		docstore.FieldUploadURL: up.UploadURL,
		docstore.FieldImageURL:  up.ImageURL,
	})
}
