package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	require.NoError(t, store.Save("sess-1", "verdict.txt", []byte("report body")))

	data, err := store.Get("sess-1", "verdict.txt")
	require.NoError(t, err)
	assert.Equal(t, "report body", string(data))

	ids, err := store.List("sess-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"verdict.txt"}, ids)
}

func TestInMemoryStore_CopiesOnSaveAndGet(t *testing.T) {
	store := NewInMemoryStore()

	original := []byte("abc")
	require.NoError(t, store.Save("sess-1", "a", original))
	original[0] = 'X'

	data, err := store.Get("sess-1", "a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	data[0] = 'Y'
	again, err := store.Get("sess-1", "a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestInMemoryStore_NotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("sess-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete("sess-1", "missing"), ErrNotFound)

	ids, err := store.List("sess-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("sess-1", "a", []byte("x")))

	require.NoError(t, store.Delete("sess-1", "a"))

	_, err := store.Get("sess-1", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
