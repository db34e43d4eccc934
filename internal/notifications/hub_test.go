package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub(nil)

	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, uint(1), client.UserID)
	assert.True(t, hub.IsOnline(1))
	assert.False(t, hub.IsOnline(2))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(1))

	// Unregistering twice is harmless
	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.totalConns)
}

func TestHubPerUserConnectionLimit(t *testing.T) {
	hub := NewHub(nil)

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user connection limit")

	// Another user is unaffected
	_, err = hub.Register(2, nil)
	require.NoError(t, err)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)

	c1, err := hub.Register(1, nil)
	require.NoError(t, err)
	c2, err := hub.Register(1, nil)
	require.NoError(t, err)
	c3, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "hello")

	assert.Equal(t, "hello", string(<-c1.Send))
	assert.Equal(t, "hello", string(<-c2.Send))
	assert.Empty(t, c3.Send)

	// Broadcasting to a user with no connections is a no-op
	hub.Broadcast(42, "nobody home")
}

func TestHubBroadcastAll(t *testing.T) {
	hub := NewHub(nil)

	c1, err := hub.Register(1, nil)
	require.NoError(t, err)
	c2, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll("announcement")

	assert.Equal(t, "announcement", string(<-c1.Send))
	assert.Equal(t, "announcement", string(<-c2.Send))
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub(nil)

	_, err := hub.Register(1, nil)
	require.NoError(t, err)
	_, err = hub.Register(2, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.False(t, hub.IsOnline(1))
	assert.False(t, hub.IsOnline(2))
	assert.Equal(t, 0, hub.totalConns)
}

func TestTrySend(t *testing.T) {
	hub := NewHub(nil)

	t.Run("delivers when the buffer has room", func(t *testing.T) {
		client := NewClient(hub, nil, 1)
		client.TrySend([]byte("one"))
		assert.Equal(t, "one", string(<-client.Send))
	})

	t.Run("drops when the buffer is full", func(t *testing.T) {
		client := &Client{Hub: hub, Send: make(chan []byte, 2), UserID: 1}
		for i := 0; i < 4; i++ {
			client.TrySend([]byte(fmt.Sprintf("msg-%d", i)))
		}
		// The first two made it; the rest were dropped without blocking
		assert.Equal(t, "msg-0", string(<-client.Send))
		assert.Equal(t, "msg-1", string(<-client.Send))
		assert.Empty(t, client.Send)
	})

	t.Run("survives a closed channel", func(t *testing.T) {
		client := NewClient(hub, nil, 1)
		close(client.Send)
		client.TrySend([]byte("late"))
	})
}
