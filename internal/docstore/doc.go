// Package docstore defines the gRPC contract of the remote document store.
//
// Overview
//
// The service is a key/value document store grouped in collections. It has no
// generated stubs: every request and response is a google.protobuf.Struct,
// and this package provides the service descriptor, a typed client, the
// server registration helper and conversions between Go maps and the wire
// messages.
//
// Methods
//
//	FetchAll            {collection}                 -> {documents:[{key,data}]}
//	GetByKey            {collection,key}             -> {found, document}
//	Upsert              {collection,key,data}        -> {}
//	DeleteByKey         {collection,key}             -> {}
//	CommitBatch         {collection,writes:[{key,data}]} -> {}
//	Count               {collection}                 -> {count}
//	Ping                {}                           -> {status}
//	PresignImageUpload  {productCode,contentType}    -> {uploadUrl,imageUrl}
//
// Server-side timestamp placeholders (common.ServerTimestamp) are resolved by
// the server before data is stored.
package docstore
