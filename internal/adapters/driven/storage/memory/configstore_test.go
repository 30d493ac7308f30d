package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("embedding.model", "bge-m3"))

	val, ok := store.Get("embedding.model")
	assert.True(t, ok)
	assert.Equal(t, "bge-m3", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("s", "text")
	_ = store.Set("i", 256)
	_ = store.Set("i64", int64(30))
	_ = store.Set("f", 0.3)
	_ = store.Set("b", true)
	_ = store.Set("list", []any{"chunker", 1, "other"})

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))

	assert.Equal(t, 256, store.GetInt("i"))
	assert.Equal(t, 30, store.GetInt("i64"))
	assert.Equal(t, 0, store.GetInt("f"))
	assert.Equal(t, 0, store.GetInt("s"))

	assert.InDelta(t, 0.3, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 256.0, store.GetFloat("i"), 1e-9)
	assert.InDelta(t, 30.0, store.GetFloat("i64"), 1e-9)
	assert.Zero(t, store.GetFloat("s"))

	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))

	assert.Equal(t, []string{"chunker", "other"}, store.GetStringSlice("list"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("k", "v")

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("query.top_k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("query.top_k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("query.top_k")
	assert.True(t, ok)
}
