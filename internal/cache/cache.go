// Package cache stores fetched citation pages between verifications.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque values with a TTL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "trustgate:page:v1:" + hex.EncodeToString(hash[:])
}

// Open returns nil when ttl is zero, a memory cache when dir is empty,
// and a memory-over-disk cache otherwise
func Open(ttl time.Duration, dir string) Cache {
	if ttl <= 0 {
		return nil
	}
	if dir == "" {
		return NewMemoryCache(ttl, 2*ttl)
	}
	return NewLayeredCache(ttl, dir, ttl)
}
