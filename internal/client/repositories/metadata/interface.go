// Package metadata stores small named values of the local cache database:
// the cache's last-sync time and the mirrored per-user fetch markers.
package metadata

import (
	"context"
	"time"
)

// KeyLastSync holds the time the cache snapshot was last replaced from the
// remote collection.
const KeyLastSync = "supplies.last_sync"

// FetchMarkerKey is the local mirror of a user's suppliesLastFetched marker.
func FetchMarkerKey(userID string) string {
	return "users." + userID + ".supplies_last_fetched"
}

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	GetTime(ctx context.Context, key string) (*time.Time, error)
	SetTime(ctx context.Context, key string, t *time.Time) error
}
