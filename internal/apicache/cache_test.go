package apicache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() }) //nolint:errcheck
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t, time.Hour)
	ctx := context.Background()

	miss, err := c.Get(ctx, "kvk", "acme")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, c.Put(ctx, "kvk", "acme", []byte(`{"kvkNummer":"12345678"}`)))

	got, err := c.Get(ctx, "kvk", "acme")
	require.NoError(t, err)
	assert.JSONEq(t, `{"kvkNummer":"12345678"}`, string(got))

	// Same key under a different source is a separate entry.
	other, err := c.Get(ctx, "apollo", "acme")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c := openTestCache(t, -time.Second)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "kvk", "acme", []byte("old")))
	got, err := c.Get(ctx, "kvk", "acme")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutReplaces(t *testing.T) {
	c := openTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "kvk", "acme", []byte("v1")))
	require.NoError(t, c.Put(ctx, "kvk", "acme", []byte("v2")))

	got, err := c.Get(ctx, "kvk", "acme")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}
