package shared

import (
	"context"
	"time"
)

// ResultCache stores the outcome of a completed request under a client key
// so that a retried request replays it instead of running again
type ResultCache interface {
	// Get returns the stored result. found is false when the key is unknown or expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value for ttl. An existing unexpired value is kept.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases resources held by the cache
	Close() error
}

// DefaultResultTTL is how long an import result is replayable
const DefaultResultTTL = 24 * time.Hour
