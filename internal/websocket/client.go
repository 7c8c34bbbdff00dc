package websocket

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Client represents a single connected WebSocket participant.
type Client struct {
	// ID is the participant id assigned by the session registry.
	ID string

	conn *websocket.Conn
	send chan []byte
	mu   sync.RWMutex
}

// SetID records the participant id assigned at registration. The registry
// can deliver to the client as soon as it is registered, so the id is set
// under the same lock TrySend reads it with.
func (c *Client) SetID(id string) {
	c.mu.Lock()
	c.ID = id
	c.mu.Unlock()
}

// TrySend queues a message for the client without blocking. A full buffer
// means the client is lagging or dead; the message is dropped rather than
// stalling the caller. Sending to a closed client is a silent no-op.
func (c *Client) TrySend(msg []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// A nil channel means the client already disconnected.
	if c.send == nil {
		return
	}

	select {
	case c.send <- msg:
	default:
		slog.Warn("Client send channel full, dropping message", "participant_id", c.ID)
	}
}

// Close safely closes the client's send channel. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}
