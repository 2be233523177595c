package client

import (
	"context"
	"net"
	"testing"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeDocServer struct {
	docstore.DocumentStoreServer

	lastToken string
	lastReq   *structpb.Struct
	resp      map[string]any
	err       error
}

func (f *fakeDocServer) handle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			f.lastToken = v[0]
		}
	}
	f.lastReq = in
	if f.err != nil {
		return nil, f.err
	}
	return docstore.NewMessage(f.resp)
}

func (f *fakeDocServer) FetchAll(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}
func (f *fakeDocServer) GetByKey(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}
func (f *fakeDocServer) Upsert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}
func (f *fakeDocServer) DeleteByKey(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}
func (f *fakeDocServer) CommitBatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}
func (f *fakeDocServer) Count(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}
func (f *fakeDocServer) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}
func (f *fakeDocServer) PresignImageUpload(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return f.handle(ctx, in)
}

func startFake(t *testing.T, token string) (*GRPCStore, *fakeDocServer) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	fake := &fakeDocServer{}
	docstore.RegisterDocumentStoreServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	s, err := NewGRPCStore("passthrough:///bufnet", token, 0,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fake
}

func TestGRPCStore_FetchAll(t *testing.T) {
	s, fake := startFake(t, "tok-1")
	fake.resp = map[string]any{
		docstore.FieldDocuments: docstore.EntriesValue([]docstore.Entry{
			{Key: "A", Data: map[string]any{"productCode": "A"}},
			{Key: "B", Data: map[string]any{"productCode": "B"}},
		}),
	}

	docs, err := s.FetchAll(context.Background(), common.SuppliesCollection)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "B", docs[1].Data["productCode"])
	assert.Equal(t, "tok-1", fake.lastToken)
	assert.Equal(t, common.SuppliesCollection, docstore.String(fake.lastReq, docstore.FieldCollection))
}

func TestGRPCStore_GetByKey(t *testing.T) {
	s, fake := startFake(t, "")
	fake.resp = map[string]any{docstore.FieldFound: false}

	doc, err := s.GetByKey(context.Background(), "c", "k")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Empty(t, fake.lastToken)

	fake.resp = map[string]any{docstore.FieldFound: true, docstore.FieldDocument: map[string]any{"v": "x"}}
	doc, err = s.GetByKey(context.Background(), "c", "k")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "x", doc.Data["v"])
}

func TestGRPCStore_CommitBatchSendsWrites(t *testing.T) {
	s, fake := startFake(t, "")
	fake.resp = map[string]any{}

	err := s.CommitBatch(context.Background(), "c", []Write{{Key: "a", Data: map[string]any{"n": 1}}, {Key: "b"}})
	require.NoError(t, err)

	entries, err := docstore.Entries(fake.lastReq, docstore.FieldWrites)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)

	fake.lastReq = nil
	require.NoError(t, s.CommitBatch(context.Background(), "c", nil))
	assert.Nil(t, fake.lastReq, "empty batch must not reach the server")
}

func TestGRPCStore_CountAndPresign(t *testing.T) {
	s, fake := startFake(t, "")
	fake.resp = map[string]any{docstore.FieldCount: 42}
	n, err := s.Count(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	fake.resp = map[string]any{docstore.FieldUploadURL: "http://s3/put", docstore.FieldImageURL: "http://s3/get"}
	up, err := s.PresignImageUpload(context.Background(), "A-1", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/put", up.UploadURL)
	assert.Equal(t, "A-1", docstore.String(fake.lastReq, docstore.FieldProductCode))
}

func TestGRPCStore_ErrorMapping(t *testing.T) {
	s, fake := startFake(t, "")
	ctx := context.Background()

	fake.err = status.Error(codes.Unauthenticated, "missing token")
	assert.ErrorIs(t, s.Ping(ctx), ErrUnauthorized)

	fake.err = status.Error(codes.Unavailable, "db down")
	err := s.Ping(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsOffline(err))

	fake.err = status.Error(codes.InvalidArgument, "bad key")
	assert.ErrorIs(t, s.Upsert(ctx, "c", "k", nil), common.ErrValidation)

	fake.err = status.Error(codes.Internal, "boom")
	err = s.DeleteByKey(ctx, "c", "k")
	require.Error(t, err)
	assert.False(t, IsOffline(err))
}

func TestGRPCStore_UnreachableIsOffline(t *testing.T) {
	s, err := NewGRPCStore("127.0.0.1:1", "", 0)
	require.NoError(t, err)
	defer s.Close()

	err = s.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsOffline(err), "got %v", err)
}
