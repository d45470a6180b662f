package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(4)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, Key("football", "2026-08-25"))
	require.NoError(t, err)
	assert.False(t, ok)

	payload := []byte(`{"predictions":[1,2,3]}`)
	require.NoError(t, s.Put(ctx, Key("football", "2026-08-25"), payload))

	first, ok, err := s.Get(ctx, Key("football", "2026-08-25"))
	require.NoError(t, err)
	require.True(t, ok)
	second, ok, err := s.Get(ctx, Key("football", "2026-08-25"))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, first.Payload, second.Payload, "reads within TTL are bit-identical")
	assert.Equal(t, payload, first.Payload)
	assert.False(t, first.Timestamp.IsZero())
}

func TestMemoryStorePayloadIsolated(t *testing.T) {
	s := NewMemoryStore(4)
	ctx := context.Background()

	payload := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", payload))
	payload[0] = 'z'

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), got.Payload, "store keeps its own copy")
}

func TestMemoryStoreSupersedes(t *testing.T) {
	s := NewMemoryStore(4)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("old")))
	require.NoError(t, s.Put(ctx, "k", []byte("new")))

	got, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got.Payload)
}

func TestMemoryStoreEvictsLRU(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	clock := time.Now()
	s.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "b", []byte("2")))
	_, _, _ = s.Get(ctx, "a") // refresh a
	require.NoError(t, s.Put(ctx, "c", []byte("3")))

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore(4)
	ctx := context.Background()

	_, _, _ = s.Get(ctx, "missing")
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	_, _, _ = s.Get(ctx, "k")

	hits, misses := s.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "football|2026-08-25", Key("football", "2026-08-25"))
	assert.Equal(t, "football|any", Key("football", ""))
}
