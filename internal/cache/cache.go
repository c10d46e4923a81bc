// Package cache stores serialized simulation results keyed by a digest of
// the request that produced them.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Repository is a byte cache with per-entry expiry.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives a cache key from a prefix and the canonical payload bytes.
func Key(prefix string, payload []byte) string {
	return fmt.Sprintf("%s%016x", prefix, xxhash.Sum64(payload))
}
