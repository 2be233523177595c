package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Remote collections and documents.
const (
	SuppliesCollection = "medical-supplies"
	MetadataCollection = "app_metadata"
	UsersCollection    = "users"

	SuppliesMetadataKey = "supplies_metadata"
)

// Field names of the staleness markers.
const (
	FieldSuppliesLastUpdated = "suppliesLastUpdated"
	FieldSuppliesLastFetched = "suppliesLastFetched"
	FieldCreatedAt           = "createdAt"
	FieldUpdatedAt           = "updatedAt"
)

// ServerTimestamp is a placeholder field value. Store backends replace
// every top-level field holding it with their own clock at write time.
const ServerTimestamp = "\x00server-timestamp"

// MaxBatchSize is the largest number of writes one atomic batch commit
// accepts.
const MaxBatchSize = 500
