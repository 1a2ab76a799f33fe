package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVSetGet(t *testing.T) {
	store := NewMemoryKV()

	require.NoError(t, store.Set("alpha", []byte("1")))

	v, err := store.Get("alpha")
	assert.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	v, err = store.Get("missing")
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryKVExpiry(t *testing.T) {
	store := NewMemoryKV()

	require.NoError(t, store.SetTTL("short", []byte("x"), 10*time.Millisecond))
	require.NoError(t, store.SetTTL("long", []byte("y"), time.Hour))

	time.Sleep(20 * time.Millisecond)

	v, err := store.Get("short")
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = store.Get("long")
	assert.NoError(t, err)
	assert.Equal(t, []byte("y"), v)
}

func TestMemoryKVDelete(t *testing.T) {
	store := NewMemoryKV()

	require.NoError(t, store.Set("k", []byte("v")))
	require.NoError(t, store.Delete("k"))

	v, err := store.Get("k")
	assert.NoError(t, err)
	assert.Nil(t, v)

	// deleting a missing key is not an error
	assert.NoError(t, store.Delete("k"))
}

func TestMemoryKVKeys(t *testing.T) {
	store := NewMemoryKV()

	require.NoError(t, store.Set("log:2", []byte("b")))
	require.NoError(t, store.Set("log:1", []byte("a")))
	require.NoError(t, store.Set("other:1", []byte("c")))
	require.NoError(t, store.SetTTL("log:0", []byte("z"), 5*time.Millisecond))

	time.Sleep(10 * time.Millisecond)

	keys, err := store.Keys("log:")
	require.NoError(t, err)
	assert.Equal(t, []string{"log:1", "log:2"}, keys)
}

func TestMemoryKVPrune(t *testing.T) {
	store := NewMemoryKV()

	require.NoError(t, store.SetTTL("gone", []byte("x"), 5*time.Millisecond))
	require.NoError(t, store.Set("kept", []byte("y")))

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, store.Prune())

	keys, err := store.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, keys)
}
