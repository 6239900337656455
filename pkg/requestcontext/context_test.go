package requestcontext

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedMap(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		m := NewSharedMap()
		m.Set(KeySession, "sess")

		v, ok := m.Get(KeySession)
		require.True(t, ok)
		assert.Equal(t, "sess", v)

		m.Delete(KeySession)
		_, ok = m.Get(KeySession)
		assert.False(t, ok)
	})

	t.Run("load or store creates once under contention", func(t *testing.T) {
		m := NewSharedMap()
		var created atomic.Int32
		var wg sync.WaitGroup
		for range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.LoadOrStore(KeySupabase, func() any {
					created.Add(1)
					return "client"
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), created.Load())
	})
}

func TestSharedFromContext(t *testing.T) {
	t.Run("attached map is returned", func(t *testing.T) {
		m := NewSharedMap()
		ctx := WithSharedMap(context.Background(), m)
		assert.Same(t, m, Shared(ctx))
		assert.True(t, HasShared(ctx))
	})

	t.Run("missing map yields a detached empty map", func(t *testing.T) {
		ctx := context.Background()
		m := Shared(ctx)
		require.NotNil(t, m)
		m.Set("k", "v")
		_, ok := Shared(ctx).Get("k")
		assert.False(t, ok)
		assert.False(t, HasShared(ctx))
	})
}

func TestAccessors(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := context.Background()
	ctx = WithUserID(ctx, "user-1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientMetadata(ctx, "10.0.0.1", "curl/8")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, "user-1", UserID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "curl/8", UserAgent(ctx))
	assert.Equal(t, fixed, Now(ctx))
	assert.Equal(t, "", UserID(context.Background()))
}
