package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/siherrmann/cataloger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessorCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Get on missing slot", func(t *testing.T) {
		state := NormalizeState(nil)
		cache := NewProcessorCache(state, "p")

		value, ok := cache.Get(ctx, "key")

		assert.False(t, ok)
		assert.Nil(t, value)
		assert.Empty(t, state.Cache, "Expected get not to create a slot")
	})

	t.Run("Set creates the slot", func(t *testing.T) {
		state := NormalizeState(nil)
		cache := NewProcessorCache(state, "p")

		cache.Set(ctx, "key", "value")
		value, ok := cache.Get(ctx, "key")

		require.True(t, ok)
		assert.Equal(t, "value", value)
		assert.Equal(t, map[string]interface{}{"p": map[string]interface{}{"key": "value"}}, state.Cache)
	})

	t.Run("Malformed slot reads as absent and is replaced on set", func(t *testing.T) {
		state := model.ProcessingState{Cache: map[string]interface{}{"p": "garbage"}}
		cache := NewProcessorCache(state, "p")

		_, ok := cache.Get(ctx, "key")
		assert.False(t, ok)
		assert.Equal(t, "garbage", state.Cache["p"], "Expected get not to repair the slot")

		cache.Set(ctx, "key", 1)
		assert.Equal(t, map[string]interface{}{"key": 1}, state.Cache["p"])
	})

	t.Run("Metadata slot keeps entries on set", func(t *testing.T) {
		state := model.ProcessingState{Cache: map[string]interface{}{"p": model.Metadata{"old": true}}}
		cache := NewProcessorCache(state, "p")

		old, ok := cache.Get(ctx, "old")
		require.True(t, ok)
		assert.Equal(t, true, old)

		cache.Set(ctx, "new", true)
		assert.Equal(t, map[string]interface{}{"old": true, "new": true}, state.Cache["p"])
	})

	t.Run("Caches are namespaced by processor", func(t *testing.T) {
		state := NormalizeState(nil)
		shared := newSharedCache(state.Cache)
		a := shared.forProcessor("a")
		b := shared.forProcessor("b")

		a.Set(ctx, "key", "a")
		b.Set(ctx, "key", "b")

		valueA, _ := a.Get(ctx, "key")
		valueB, _ := b.Get(ctx, "key")
		assert.Equal(t, "a", valueA)
		assert.Equal(t, "b", valueB)
	})

	t.Run("Concurrent access", func(t *testing.T) {
		state := NormalizeState(nil)
		shared := newSharedCache(state.Cache)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				cache := shared.forProcessor("p")
				cache.Set(ctx, string(rune('a'+i)), i)
				cache.Get(ctx, "a")
			}(i)
		}
		wg.Wait()

		assert.Len(t, state.Cache["p"], 10)
	})
}
