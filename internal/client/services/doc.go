// Package services implements the offline-aware sync core of the supply client.
//
// # Overview
//
//   - StalenessOracle compares the collection-wide "last updated" marker with
//     a user's "last fetched" marker.
//   - FetchMarkers reads and writes per-user fetch markers, mirrored locally.
//   - SupplyFetcher (smart fetch) decides between the cache and a full fetch,
//     falls back to the cache when offline, and is single-flight.
//   - Reconcile splits import candidates into new and duplicate records.
//   - Importer uploads records in atomic chunks of at most 500 writes.
//   - ImportService, SupplyService and ImageService orchestrate user actions
//     on top of those pieces; ConnectivityWatcher tracks online/offline mode.
//
// # Concurrency
//
// All services are safe for concurrent use. Remote calls take the caller's
// context; the cache (package cache) is the only shared mutable state.
package services
