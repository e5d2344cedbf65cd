package socket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientEnqueueDropsWhenFull(t *testing.T) {
	client := &Client{
		ID:     "c1",
		send:   make(chan []byte, 2),
		closed: make(chan struct{}),
	}

	assert.True(t, client.Enqueue([]byte("msg1")))
	assert.True(t, client.Enqueue([]byte("msg2")))
	assert.False(t, client.Enqueue([]byte("msg3")))

	assert.Equal(t, "msg1", string(<-client.send))
	assert.Equal(t, "msg2", string(<-client.send))
	assert.Empty(t, client.send)
}

func TestClientEnqueueAfterClose(t *testing.T) {
	client := NewClient("c1", nil)
	client.Close()
	client.Close()

	assert.False(t, client.Enqueue([]byte("late")))
}

func TestHubPostToConnection(t *testing.T) {
	hub := NewHub()
	client := NewClient("c1", nil)
	hub.Register(client)
	require.Equal(t, 1, hub.Len())

	err := hub.PostToConnection(context.Background(), "c1", map[string]string{"type": "ACK"})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(<-client.send, &got))
	assert.Equal(t, "ACK", got["type"])

	err = hub.PostToConnection(context.Background(), "missing", "x")
	assert.ErrorIs(t, err, ErrConnectionGone)
}

func TestHubPostRawMessageIsSentVerbatim(t *testing.T) {
	hub := NewHub()
	client := NewClient("c1", nil)
	hub.Register(client)

	raw := json.RawMessage(`{"type":"presence:update","data":{"count":0,"users":[]}}`)
	require.NoError(t, hub.PostToConnection(context.Background(), "c1", raw))
	assert.JSONEq(t, string(raw), string(<-client.send))
}

func TestHubPostToFullQueue(t *testing.T) {
	hub := NewHub()
	client := &Client{ID: "c1", send: make(chan []byte, 1), closed: make(chan struct{})}
	hub.Register(client)

	require.NoError(t, hub.PostToConnection(context.Background(), "c1", "first"))
	assert.ErrorIs(t, hub.PostToConnection(context.Background(), "c1", "second"), ErrQueueFull)
}

func TestHubDeleteConnection(t *testing.T) {
	hub := NewHub()
	client := NewClient("c1", nil)
	hub.Register(client)

	require.NoError(t, hub.DeleteConnection(context.Background(), "c1"))
	select {
	case <-client.closed:
	default:
		t.Fatal("expected client to be closed")
	}

	hub.Unregister("c1")
	assert.Equal(t, 0, hub.Len())
	assert.ErrorIs(t, hub.DeleteConnection(context.Background(), "c1"), ErrConnectionGone)
}
