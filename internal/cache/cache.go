// Package cache memoizes pipeline output per (sport, date-filter) key.
//
// TTL enforcement belongs to the caller: stores hand back the entry with its
// write timestamp and the orchestrator compares against the configured TTL at
// read time. There is no request-coalescing for two concurrent misses on the
// same key; both callers recompute and the second writer wins, which is a
// resource-efficiency gap rather than a correctness hazard.
package cache

import (
	"context"
	"time"
)

// Entry is one memoized payload. Payload bytes are returned as written, so
// two reads within TTL are bit-identical.
type Entry struct {
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the minimal cache contract. Implementations never expire entries
// on their own before the caller's TTL; they may evict for capacity.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// Key builds the canonical (sport, date-filter) cache key.
func Key(sport, dateFilter string) string {
	if dateFilter == "" {
		dateFilter = "any"
	}
	return sport + "|" + dateFilter
}
