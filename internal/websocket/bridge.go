package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/chatrelay/internal/pubsub"
	"github.com/nfrund/chatrelay/internal/relay"
	"github.com/nfrund/chatrelay/internal/topics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// DefaultSendBuffer is the per-client outbound queue size.
	DefaultSendBuffer = 256
)

// Bridge upgrades HTTP requests to WebSocket connections and pipes each
// connection into the relay: inbound frames are published verbatim to the
// pub/sub bus tagged with the sender's participant id, and the relay writes
// back through the client's send channel.
//
// The Bridge keeps no membership state of its own; the session registry is
// the single source of truth for who is connected.
type Bridge struct {
	router     *relay.Router
	publisher  pubsub.Publisher
	sendBuffer int
}

// NewBridge creates a bridge over the given router and publisher.
// A non-positive sendBuffer falls back to DefaultSendBuffer.
func NewBridge(router *relay.Router, pub pubsub.Publisher, sendBuffer int) *Bridge {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Bridge{
		router:     router,
		publisher:  pub,
		sendBuffer: sendBuffer,
	}
}

// Handler returns an echo.HandlerFunc that handles WebSocket upgrade requests.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := &Client{
			conn: conn,
			send: make(chan []byte, b.sendBuffer),
		}

		// Register before any forwarding involving this participant occurs.
		client.SetID(b.router.Connect(client))

		go b.writePump(client)
		go b.readPump(client)

		// Announce the new channel on the bus. Lifecycle events carry no
		// ordering promise relative to payload events, so this can be async.
		go b.publishLifecycle(topics.TopicClientConnected.Name(), client.ID, "")

		return nil
	}
}

// readPump pumps frames from the WebSocket connection onto the bus.
func (b *Bridge) readPump(client *Client) {
	reason := "client_closed"
	defer func() {
		client.Close()
		client.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
		b.publishLifecycle(topics.TopicClientDisconnected.Name(), client.ID, reason)
	}()

	for {
		_, payload, err := client.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "participant_id", client.ID)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "participant_id", client.ID, "error", err)
				reason = "read_error"
			}
			break
		}

		// Forward verbatim; the router owns decoding and routing.
		msg := pubsub.Message{
			Topic:    topics.TopicSessionInbound.Name(),
			SenderID: client.ID,
			Payload:  payload,
			Metadata: map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		}
		if err := b.publisher.Publish(context.Background(), msg); err != nil {
			slog.Error("Failed to publish inbound frame", "participant_id", client.ID, "error", err)
		}
	}
}

// writePump pumps messages from the client's send channel to the WebSocket
// connection. One writer per connection.
func (b *Bridge) writePump(client *Client) {
	defer func() {
		client.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
	}()

	for message := range client.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := client.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "participant_id", client.ID, "error", err)
			return
		}
	}
}

func (b *Bridge) publishLifecycle(topic, participantID, reason string) {
	event := map[string]string{"participantId": participantID}
	if reason != "" {
		event["reason"] = reason
	}
	payload, _ := json.Marshal(event)

	msg := pubsub.Message{
		Topic:    topic,
		SenderID: participantID,
		Payload:  payload,
	}
	if err := b.publisher.Publish(context.Background(), msg); err != nil {
		slog.Error("Failed to publish lifecycle event", "topic", topic, "participant_id", participantID, "error", err)
	}
}
