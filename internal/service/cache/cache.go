// Package cache provides a small byte cache used to shield the metrics read
// path from repeated store aggregation. Backends: in-process TTL map or Redis.
package cache

import "time"

// BytesCache stores opaque byte payloads with a TTL.
type BytesCache interface {
	GetBytes(key string) ([]byte, bool, error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
