package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers submission keys so a replayed write can be detected
type IdempotencyStore interface {
	// MarkProcessed claims a key for the given TTL.
	// Returns true if the key was newly claimed, false if it was already taken.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets a key, letting a failed submission be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
