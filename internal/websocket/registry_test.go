package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userId uuid.UUID) *Client {
	return &Client{UserID: userId, Send: make(chan []byte, 8)}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	userId := uuid.New()
	client := newTestClient(userId)

	assert.Nil(t, r.Register(client))
	assert.Equal(t, 1, r.Online())

	got, ok := r.Lookup(userId)
	require.True(t, ok)
	assert.Same(t, client, got)
	assert.True(t, r.Registered(client))
}

func TestRegistrySecondConnectionDisplacesFirst(t *testing.T) {
	r := NewRegistry()
	userId := uuid.New()
	first := newTestClient(userId)
	second := newTestClient(userId)

	require.Nil(t, r.Register(first))
	displaced := r.Register(second)
	assert.Same(t, first, displaced)

	// The displaced connection is no longer a registry entry.
	assert.False(t, r.Registered(first))
	got, ok := r.Lookup(userId)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Online())
}

func TestRegistryReRegisterSameClientIsNoop(t *testing.T) {
	r := NewRegistry()
	client := newTestClient(uuid.New())

	require.Nil(t, r.Register(client))
	assert.Nil(t, r.Register(client))
	assert.Equal(t, 1, r.Online())
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	userId := uuid.New()
	client := newTestClient(userId)

	t.Run("unknown client removes nothing", func(t *testing.T) {
		assert.False(t, r.Remove(client))
	})

	t.Run("registered client removed", func(t *testing.T) {
		r.Register(client)
		assert.True(t, r.Remove(client))
		_, ok := r.Lookup(userId)
		assert.False(t, ok)
		assert.Equal(t, 0, r.Online())
	})

	t.Run("displaced client does not evict its successor", func(t *testing.T) {
		first := newTestClient(userId)
		second := newTestClient(userId)
		r.Register(first)
		r.Register(second)

		assert.False(t, r.Remove(first))
		got, ok := r.Lookup(userId)
		require.True(t, ok)
		assert.Same(t, second, got)
	})
}
