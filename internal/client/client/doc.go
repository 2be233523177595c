// Package client contains the remote-store side of the supply client.
//
// # Overview
//
// The package provides:
//  1. The Store interface: the operations the sync core needs from the remote
//     document collection (FetchAll, GetByKey, Upsert, DeleteByKey,
//     CommitBatch, Count, Ping).
//  2. Three implementations: GRPCStore (the medsupply document server),
//     RedisStore (a Redis hash per collection) and MemoryStore (process-local,
//     for offline demos and tests).
//  3. Error classification: IsOffline separates connectivity failures, which
//     callers answer with cached data, from every other failure.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Sentinel errors are matched with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrLocalDataNotAvailable, plus common.ErrBatchTooLarge and
// common.ErrValidation from the shared package.
//
// Concurrency & Contexts
//
// All Store implementations are safe for concurrent use. Every operation takes
// a context.Context and honours cancellation.
package client
