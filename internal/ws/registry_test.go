package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID int) *Client {
	return &Client{
		userID: userID,
		info:   ConnInfo{ConnID: "test"},
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	client := newTestClient(1)

	registry.Register(1, client)

	got, ok := registry.Lookup(1)
	require.True(t, ok)
	assert.Same(t, client, got)

	_, ok = registry.Lookup(2)
	assert.False(t, ok)
}

func TestRegistryReconnectReplacesEntry(t *testing.T) {
	registry := NewRegistry()
	old := newTestClient(1)
	replacement := newTestClient(1)

	registry.Register(1, old)
	registry.Register(1, replacement)

	got, ok := registry.Lookup(1)
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Len(t, registry.OnlineUserIDs(), 1)
}

func TestRegistryUnregisterIgnoresStaleHandle(t *testing.T) {
	registry := NewRegistry()
	old := newTestClient(1)
	replacement := newTestClient(1)

	registry.Register(1, old)
	registry.Register(1, replacement)

	// A late disconnect of the superseded connection must not evict the
	// replacement.
	assert.False(t, registry.Unregister(1, old))

	got, ok := registry.Lookup(1)
	require.True(t, ok)
	assert.Same(t, replacement, got)

	assert.True(t, registry.Unregister(1, replacement))
	_, ok = registry.Lookup(1)
	assert.False(t, ok)
}

func TestRegistryOnlineUserIDs(t *testing.T) {
	registry := NewRegistry()
	registry.Register(1, newTestClient(1))
	registry.Register(2, newTestClient(2))
	registry.Register(3, newTestClient(3))

	ids := registry.OnlineUserIDs()
	assert.ElementsMatch(t, []int{1, 2, 3}, ids)
	assert.Len(t, registry.Clients(), 3)
}

func TestRegistryConcurrentChurnKeepsSingleEntry(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := newTestClient(1)
			registry.Register(1, client)
			registry.Lookup(1)
			registry.OnlineUserIDs()
			registry.Unregister(1, client)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, len(registry.OnlineUserIDs()), 1)
}
