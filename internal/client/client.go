// Package client provides a Go participant for the relay. It is the sending
// edge the core leaves out of scope: it owns the keystroke debounce that
// decides typing transitions, and it maintains the observer-side view of
// which peers are typing.
package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/nfrund/chatrelay/internal/relay"
	"github.com/nfrund/chatrelay/internal/typing"
)

// MessageHandler receives forwarded chat messages from other participants.
type MessageHandler func(participantID, body string)

// Client is one connected participant.
type Client struct {
	conn      *websocket.Conn
	tracker   *typing.Tracker
	debouncer *typing.Debouncer
	onMessage MessageHandler

	// writeMu serializes writes: the debounce timer fires on its own
	// goroutine and must not interleave frames with Send.
	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// Options configures a Client.
type Options struct {
	// DebounceWindow is the idle gap before typing stops. Zero means
	// typing.DefaultDebounceWindow.
	DebounceWindow time.Duration
	// OnMessage is called for every forwarded chat message. Optional.
	OnMessage MessageHandler
}

// Dial connects to the relay's WebSocket endpoint and starts the read loop.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:      conn,
		tracker:   typing.NewTracker(),
		onMessage: opts.OnMessage,
		done:      make(chan struct{}),
	}
	c.debouncer = typing.NewDebouncer(opts.DebounceWindow, c.emitTyping)

	go c.readLoop()
	return c, nil
}

// Keystroke reports one keystroke in the compose box. The first keystroke of
// an idle period notifies peers that typing started; the debouncer emits the
// stop once the idle window elapses.
func (c *Client) Keystroke() {
	c.debouncer.Keystroke()
}

// Send submits a chat message. Any pending debounce timer is cancelled and
// peers see typing:false before the message, so the indicator never outlives
// the message that ended it.
func (c *Client) Send(body string) error {
	c.debouncer.Flush()
	return c.writeFrame(relay.InboundEvent{Type: relay.TypeChat, Body: body})
}

// Typing returns the peers this client currently believes are typing.
func (c *Client) Typing() []string {
	return c.tracker.Typing()
}

// Close stops the debouncer and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.debouncer.Stop()
		err = c.conn.Close(websocket.StatusNormalClosure, "bye")
		<-c.done
	})
	return err
}

// emitTyping is the debouncer's transition sink.
func (c *Client) emitTyping(isTyping bool) {
	if err := c.writeFrame(relay.InboundEvent{Type: relay.TypeTyping, IsTyping: isTyping}); err != nil {
		slog.Debug("Failed to send typing transition", "error", err)
	}
}

func (c *Client) writeFrame(ev relay.InboundEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

// readLoop consumes forwarded events until the connection closes. Typing
// transitions feed the tracker; chat messages go to the handler. The tracker
// is rebuilt from empty each connection, so state never leaks across dials.
func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, payload, err := c.conn.Read(context.Background())
		if err != nil {
			return
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &head); err != nil {
			slog.Debug("Ignoring undecodable frame", "error", err)
			continue
		}

		switch head.Type {
		case relay.TypeChat:
			var ev relay.ChatEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				continue
			}
			if c.onMessage != nil {
				c.onMessage(ev.ParticipantID, ev.Body)
			}
		case relay.TypeTyping:
			var ev relay.TypingEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				continue
			}
			c.tracker.Apply(ev.ParticipantID, ev.IsTyping)
		}
	}
}
