package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", map[string]string{"a": "b"}, 0))

	var got map[string]string
	require.NoError(t, kv.Get(ctx, "k", &got))
	assert.Equal(t, "b", got["a"])

	require.NoError(t, kv.Delete(ctx, "k"))
	assert.ErrorIs(t, kv.Get(ctx, "k", &got), ErrMiss)
}

func TestMemoryKVExpiresLazily(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Now()
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))

	var got string
	require.NoError(t, kv.Get(ctx, "k", &got))

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, kv.Get(ctx, "k", &got), ErrMiss)
}

func TestMemoryKVMiss(t *testing.T) {
	var got string
	assert.ErrorIs(t, NewMemoryKV().Get(context.Background(), "absent", &got), ErrMiss)
}
