package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/errors"
)

func TestStore_HashSetList(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.SetFields(ctx, "h", map[string][]byte{"f": []byte("v")}))
	require.NoError(t, store.AddMembers(ctx, "s", "a", "b", "a"))
	require.NoError(t, store.AppendList(ctx, "l", "x", "y"))
	require.NoError(t, store.AppendList(ctx, "l", "z"))

	value, ok, err := store.GetField(ctx, "h", "f")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	value[0] = 'X'
	again, _, _ := store.GetField(ctx, "h", "f")
	assert.Equal(t, []byte("v"), again, "returned values must not alias stored ones")

	members, err := store.Members(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	items, err := store.RangeList(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, items)

	items, err = store.RangeList(ctx, "missing", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, items)

	for _, key := range []string{"h", "s", "l"} {
		exists, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists, key)
	}
	exists, err := store.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_WrongType(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.AddMembers(ctx, "s", "a"))

	_, _, err := store.GetField(ctx, "s", "f")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrWrongType)
	assert.True(t, errors.IsFatal(err))
}

func TestStore_CancelledContext(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.RangeList(ctx, "l", 0, -1)
	assert.ErrorIs(t, err, context.Canceled)
}
