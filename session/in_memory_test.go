package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tribunal/core"
)

func TestInMemoryStore_LazyCreation(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Get("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.ID)
	assert.Empty(t, sess.GetEvents())
}

func TestInMemoryStore_ApplyDeltaAndAppend(t *testing.T) {
	store := NewInMemoryStore()

	require.NoError(t, store.ApplyDelta("sess-1", map[string]any{"topic": "Hypatia"}))
	require.NoError(t, store.AppendEvent("sess-1", core.NewMessageEvent("run-1", "clerk", "noted")))

	sess, err := store.Get("sess-1")
	require.NoError(t, err)

	v, ok := sess.GetState("topic")
	require.True(t, ok)
	assert.Equal(t, "Hypatia", v)
	assert.Len(t, sess.GetEvents(), 1)
}

func TestInMemoryStore_ReturnsClones(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.ApplyDelta("sess-1", map[string]any{"topic": "Hypatia"}))

	sess, err := store.Get("sess-1")
	require.NoError(t, err)

	// Mutating the returned clone must not leak into the store
	sess.SetState("topic", "mutated")

	fresh, err := store.Get("sess-1")
	require.NoError(t, err)
	v, _ := fresh.GetState("topic")
	assert.Equal(t, "Hypatia", v)
}

func TestInMemoryStore_CreateOverwrites(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.ApplyDelta("sess-1", map[string]any{"topic": "Hypatia"}))

	_, err := store.Create("sess-1")
	require.NoError(t, err)

	sess, err := store.Get("sess-1")
	require.NoError(t, err)
	_, ok := sess.GetState("topic")
	assert.False(t, ok)
}
