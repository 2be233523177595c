package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/docstore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCStore talks to the medsupply document server.
type GRPCStore struct {
	endpointURL    string
	conn           *grpc.ClientConn
	client         *docstore.DocumentStoreClient
	accessToken    string
	requestTimeout time.Duration
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCStore) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCStore creates a lazily connecting client for endpointURL.
// A requestTimeout of zero leaves deadlines to the caller's context.
func NewGRPCStore(endpointURL, accessToken string, requestTimeout time.Duration, opts ...grpc.DialOption) (*GRPCStore, error) {
	s := &GRPCStore{endpointURL: endpointURL, accessToken: accessToken, requestTimeout: requestTimeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	s.client = docstore.NewDocumentStoreClient(conn)
	return s, nil
}

func (s *GRPCStore) call(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := docstore.NewMessage(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	out, err := s.client.Call(ctx, method, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *GRPCStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	resp, err := s.call(ctx, docstore.FetchAllMethod, map[string]any{docstore.FieldCollection: collection})
	if err != nil {
		return nil, err
	}
	entries, err := docstore.Entries(resp, docstore.FieldDocuments)
	if err != nil {
		return nil, fmt.Errorf("decode FetchAll response: %w", err)
	}
	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = Document{Key: e.Key, Data: e.Data}
	}
	return docs, nil
}

func (s *GRPCStore) GetByKey(ctx context.Context, collection, key string) (*Document, error) {
	resp, err := s.call(ctx, docstore.GetByKeyMethod, map[string]any{
		docstore.FieldCollection: collection,
		docstore.FieldKey:        key,
	})
	if err != nil {
		return nil, err
	}
	if !docstore.Bool(resp, docstore.FieldFound) {
		return nil, nil
	}
	return &Document{Key: key, Data: docstore.Map(resp, docstore.FieldDocument)}, nil
}

func (s *GRPCStore) Upsert(ctx context.Context, collection, key string, data map[string]any) error {
	_, err := s.call(ctx, docstore.UpsertMethod, map[string]any{
		docstore.FieldCollection: collection,
		docstore.FieldKey:        key,
		docstore.FieldData:       data,
	})
	return err
}

func (s *GRPCStore) DeleteByKey(ctx context.Context, collection, key string) error {
	_, err := s.call(ctx, docstore.DeleteByKeyMethod, map[string]any{
		docstore.FieldCollection: collection,
		docstore.FieldKey:        key,
	})
	return err
}

func (s *GRPCStore) CommitBatch(ctx context.Context, collection string, writes []Write) error {
	if err := checkBatch(writes); err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}

	entries := make([]docstore.Entry, len(writes))
	for i, w := range writes {
		entries[i] = docstore.Entry{Key: w.Key, Data: w.Data}
	}
	_, err := s.call(ctx, docstore.CommitBatchMethod, map[string]any{
		docstore.FieldCollection: collection,
		docstore.FieldWrites:     docstore.EntriesValue(entries),
	})
	return err
}

func (s *GRPCStore) Count(ctx context.Context, collection string) (int, error) {
	resp, err := s.call(ctx, docstore.CountMethod, map[string]any{docstore.FieldCollection: collection})
	if err != nil {
		return 0, err
	}
	return docstore.Int(resp, docstore.FieldCount), nil
}

func (s *GRPCStore) Ping(ctx context.Context) error {
	_, err := s.call(ctx, docstore.PingMethod, nil)
	return err
}

func (s *GRPCStore) PresignImageUpload(ctx context.Context, productCode, contentType string) (*ImageUpload, error) {
	resp, err := s.call(ctx, docstore.PresignImageUploadMethod, map[string]any{
		docstore.FieldProductCode: productCode,
		docstore.FieldContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return &ImageUpload{
		UploadURL: docstore.String(resp, docstore.FieldUploadURL),
		ImageURL:  docstore.String(resp, docstore.FieldImageURL),
	}, nil
}

func (s *GRPCStore) Close() error {
	return s.conn.Close()
}

func (s *GRPCStore) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", common.ErrBatchTooLarge, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
