package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire exactly at its TTL")

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_keys"])
	assert.Equal(t, 0, stats["active_keys"])

	c.Evict()
	assert.Equal(t, 0, c.Stats()["total_keys"])
}

func TestMemory_Missing(t *testing.T) {
	_, ok, err := NewMemory().Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestETag(t *testing.T) {
	etag := ComputeETag([]byte(`{"a":1}`))
	assert.Equal(t, etag, ComputeETag([]byte(`{"a":1}`)))
	assert.NotEqual(t, etag, ComputeETag([]byte(`{"a":2}`)))

	tests := []struct {
		name        string
		ifNoneMatch string
		want        bool
	}{
		{name: "empty", ifNoneMatch: "", want: false},
		{name: "wildcard", ifNoneMatch: "*", want: true},
		{name: "match", ifNoneMatch: etag, want: true},
		{name: "mismatch", ifNoneMatch: `W/"deadbeef"`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckETagMatch(tt.ifNoneMatch, etag))
		})
	}
}

func TestNamespaced(t *testing.T) {
	assert.Equal(t, "campus-reminders:contests:upcoming", namespaced("contests:upcoming"))
}
