package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchStoreLifecycle(t *testing.T) {
	store := NewMatchStore()

	match, created := store.GetOrCreate("m1")
	require.True(t, created)
	assert.Equal(t, "m1", match.ID())

	got, ok := store.Get("m1")
	require.True(t, ok)
	assert.Same(t, match, got)
	assert.Equal(t, 1, store.Count())

	store.Remove("m1")
	store.Remove("m1")
	_, ok = store.Get("m1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count())
}
