package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"notifyflow/cmd/internal/metrics"
)

var (
	ErrConnectionGone = errors.New("connection is gone")
	ErrQueueFull      = errors.New("connection send queue is full")
)

// Hub tracks the websocket clients of this process and pushes to them by id.
// It satisfies the same contract as the managed API Gateway client, so the
// rest of the application does not care which one is in use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) get(connID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[connID]
}

// PostToConnection serializes data and queues it for connID without blocking.
func (h *Hub) PostToConnection(_ context.Context, connID string, data interface{}) error {
	client := h.get(connID)
	if client == nil {
		return ErrConnectionGone
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", connID, err)
	}

	if !client.Enqueue(payload) {
		metrics.PushMessagesDropped.Inc()
		return ErrQueueFull
	}
	return nil
}

// DeleteConnection hangs up on connID after its queued messages are written.
func (h *Hub) DeleteConnection(_ context.Context, connID string) error {
	client := h.get(connID)
	if client == nil {
		return ErrConnectionGone
	}

	client.Close()
	return nil
}
