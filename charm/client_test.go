// ABOUTME: Tests for the charm KV client wrapper
// ABOUTME: Exercises key lookup, prefix scans, and reset against the badger test KV

package charm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetSetDelete(t *testing.T) {
	c := NewTestClient(t)

	_, err := c.Get([]byte("prospect:a"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, c.Set([]byte("prospect:a"), []byte("alpha")))
	v, err := c.Get([]byte("prospect:a"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(v))

	require.NoError(t, c.Delete([]byte("prospect:a")))
	_, err = c.Get([]byte("prospect:a"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestClientKeysWithPrefix(t *testing.T) {
	c := NewTestClient(t)
	for _, k := range []string{"prospect:a", "prospect:b", "interaction:a:1", "interaction:b:1"} {
		require.NoError(t, c.Set([]byte(k), []byte("x")))
	}

	keys, err := c.KeysWithPrefix([]byte("interaction:a:"))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "interaction:a:1", string(keys[0]))

	keys, err = c.KeysWithPrefix([]byte("prospect:"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	keys, err = c.KeysWithPrefix([]byte("followup:"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, c.Reset())
	keys, err = c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalClientHasNoID(t *testing.T) {
	_, err := NewTestClient(t).ID()
	assert.Error(t, err)
}
