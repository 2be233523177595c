package docstore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "medsupply.docstore.v1.DocumentStore"

const (
	FetchAllMethod           = "/" + ServiceName + "/FetchAll"
	GetByKeyMethod           = "/" + ServiceName + "/GetByKey"
	UpsertMethod             = "/" + ServiceName + "/Upsert"
	DeleteByKeyMethod        = "/" + ServiceName + "/DeleteByKey"
	CommitBatchMethod        = "/" + ServiceName + "/CommitBatch"
	CountMethod              = "/" + ServiceName + "/Count"
	PingMethod               = "/" + ServiceName + "/Ping"
	PresignImageUploadMethod = "/" + ServiceName + "/PresignImageUpload"
)

// DocumentStoreServer is implemented by the server.
type DocumentStoreServer interface {
	FetchAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetByKey(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Upsert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteByKey(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CommitBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Count(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PresignImageUpload(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type serverCall func(DocumentStoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call serverCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DocumentStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DocumentStoreServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the DocumentStore service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchAll", Handler: unaryHandler(FetchAllMethod, DocumentStoreServer.FetchAll)},
		{MethodName: "GetByKey", Handler: unaryHandler(GetByKeyMethod, DocumentStoreServer.GetByKey)},
		{MethodName: "Upsert", Handler: unaryHandler(UpsertMethod, DocumentStoreServer.Upsert)},
		{MethodName: "DeleteByKey", Handler: unaryHandler(DeleteByKeyMethod, DocumentStoreServer.DeleteByKey)},
		{MethodName: "CommitBatch", Handler: unaryHandler(CommitBatchMethod, DocumentStoreServer.CommitBatch)},
		{MethodName: "Count", Handler: unaryHandler(CountMethod, DocumentStoreServer.Count)},
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, DocumentStoreServer.Ping)},
		{MethodName: "PresignImageUpload", Handler: unaryHandler(PresignImageUploadMethod, DocumentStoreServer.PresignImageUpload)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "medsupply/docstore.proto",
}

func RegisterDocumentStoreServer(s grpc.ServiceRegistrar, srv DocumentStoreServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// DocumentStoreClient is the client side of the contract.
type DocumentStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewDocumentStoreClient(cc grpc.ClientConnInterface) *DocumentStoreClient {
	return &DocumentStoreClient{cc: cc}
}

// Call invokes method with in and returns the response message.
func (c *DocumentStoreClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
