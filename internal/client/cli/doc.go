// Package cli provides the medsupply command-line client.
//
// It wires configuration, the local SQLite cache, a remote store backend and
// the supply services behind a set of cobra commands. Read commands run a
// smart fetch first so they work from the cache when the store is offline.
//
// Commands:
//   - sync, list, show, count, expiry: read and refresh the inventory
//   - add, edit, delete, image: single-record edits
//   - import: bulk import from CSV or XLSX with duplicate preview
//   - watch: follow connectivity and refresh when the store comes back
//   - cache clear: drop the local copy
//
// Execute builds the command tree, runs it and releases resources.
package cli
