// Package cache provides the response cache used by the catalog API.
package cache

import "time"

// Store defines a minimal interface for a key/value cache with TTL.
// The values are stored as raw []byte, which you can marshal/unmarshal
// from JSON or other formats as needed.
//
// For example, you could back this with:
//   - an in-memory map
//   - Redis
//   - Memcached
//   - or any other caching system
//
// DeletePattern removes every key sharing the given prefix; backends
// without native pattern deletion must keep their own index of keys.
type Store interface {
	Get(key string) (value []byte, found bool)
	Set(key string, value []byte, expiration time.Duration)
	Delete(keys ...string)
	DeletePattern(prefix string)
}
