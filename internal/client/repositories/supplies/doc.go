// Package supplies provides the local persistence layer of the supply cache.
//
// # Overview
//
// The cache is persisted as an ordered snapshot: the table holds one row per
// supply with its position in the list. A snapshot is always written whole
// (ReplaceAll) so a half-written state is never visible once the surrounding
// transaction commits.
//
// # Concurrency
//
// Use ReplaceAll inside dbx.WithTx together with the metadata repository so the
// rows and the last-sync time change together.
//
// Key Types
//
//   - type Repository       : interface used by the cache persister
//   - type SQLiteRepository : SQLite implementation over dbx.DBTX
package supplies
