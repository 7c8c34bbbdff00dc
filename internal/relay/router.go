package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nfrund/chatrelay/internal/pubsub"
	"github.com/nfrund/chatrelay/internal/session"
	"github.com/nfrund/chatrelay/internal/topics"
)

// Router is the relay's event router. It consumes inbound participant events
// from the pub/sub bus, decides the forwarding set per event kind, and
// delivers to the recipients' channels.
//
// Both chat messages and typing transitions use sender-exclusion broadcast:
// every current member receives the event except the participant that
// produced it. Delivery is fire-and-forget; a recipient that disconnected
// between the membership snapshot and the send is a silent no-op.
type Router struct {
	registry   *session.Registry
	subscriber pubsub.Subscriber
	logger     *slog.Logger

	// typing is the router's ledger of which senders currently report
	// typing, kept so a disconnect can clear a stale indicator on peers.
	mu     sync.Mutex
	typing map[string]bool
}

// NewRouter creates a router over the given session registry.
func NewRouter(registry *session.Registry, subscriber pubsub.Subscriber) *Router {
	return &Router{
		registry:   registry,
		subscriber: subscriber,
		logger:     slog.Default().With("component", "router"),
		typing:     make(map[string]bool),
	}
}

// Connect registers an established channel and binds the participant's
// event handlers. It must be called exactly once per connection, before any
// forwarding involving the participant. The returned id is the participant's
// identity for the lifetime of the connection.
func (r *Router) Connect(ch session.Channel) string {
	id := r.registry.Register(ch)

	r.registry.Bind(id, session.EventChat, func(senderID string, payload []byte) {
		ev, err := DecodeInbound(payload)
		if err != nil {
			r.logger.Warn("Dropping malformed chat event", "participant_id", senderID, "error", err)
			return
		}
		r.OnChatMessage(senderID, ev.Body)
	})
	r.registry.Bind(id, session.EventTyping, func(senderID string, payload []byte) {
		ev, err := DecodeInbound(payload)
		if err != nil {
			r.logger.Warn("Dropping malformed typing event", "participant_id", senderID, "error", err)
			return
		}
		r.OnTyping(senderID, ev.IsTyping)
	})

	return id
}

// Start subscribes the router to its topics. Subscriptions run until the
// context is canceled.
func (r *Router) Start(ctx context.Context) error {
	if err := r.subscriber.Subscribe(ctx, topics.TopicSessionInbound.Name(), r.handleInbound); err != nil {
		return err
	}
	if err := r.subscriber.Subscribe(ctx, topics.TopicClientConnected.Name(), r.handleConnected); err != nil {
		return err
	}
	return r.subscriber.Subscribe(ctx, topics.TopicClientDisconnected.Name(), r.handleDisconnected)
}

// handleInbound dispatches one payload event through the sender's bound
// handler. A returned error would nack the message; malformed events are
// dropped here instead so one bad frame never stalls the loop.
func (r *Router) handleInbound(ctx context.Context, msg pubsub.Message) error {
	if msg.SenderID == "" {
		r.logger.Warn("Dropping inbound event without sender")
		return nil
	}

	// Peek at the type only; the bound handler decodes the full frame.
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg.Payload, &head); err != nil {
		r.logger.Warn("Dropping undecodable inbound event", "participant_id", msg.SenderID, "error", err)
		return nil
	}

	var kind session.EventKind
	switch head.Type {
	case TypeChat:
		kind = session.EventChat
	case TypeTyping:
		kind = session.EventTyping
	default:
		r.logger.Warn("Dropping inbound event of unknown type", "participant_id", msg.SenderID, "type", head.Type)
		return nil
	}

	handler, ok := r.registry.Handler(msg.SenderID, kind)
	if !ok {
		// The sender already left; its bindings went with it.
		r.logger.Debug("No handler for inbound event", "participant_id", msg.SenderID, "kind", kind)
		return nil
	}

	handler(msg.SenderID, msg.Payload)
	return nil
}

func (r *Router) handleConnected(ctx context.Context, msg pubsub.Message) error {
	var event struct {
		ParticipantID string `json:"participantId"`
	}
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		r.logger.Error("Failed to unmarshal client connected event", "error", err)
		return nil
	}

	r.logger.Info("Participant channel ready", "participant_id", event.ParticipantID, "total_participants", r.registry.Len())
	return nil
}

func (r *Router) handleDisconnected(ctx context.Context, msg pubsub.Message) error {
	var event struct {
		ParticipantID string `json:"participantId"`
		Reason        string `json:"reason"`
	}
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		r.logger.Error("Failed to unmarshal client disconnected event", "error", err)
		return nil
	}

	r.OnDisconnect(event.ParticipantID)
	return nil
}

// OnChatMessage forwards text verbatim to every member except the sender.
// The router imposes no validation or limits; whether empty messages are
// worth sending is the sending edge's policy, not the router's.
func (r *Router) OnChatMessage(senderID, text string) {
	payload, err := EncodeChat(senderID, text)
	if err != nil {
		r.logger.Error("Failed to encode chat event", "participant_id", senderID, "error", err)
		return
	}
	r.broadcastExcept(senderID, payload)
}

// OnTyping forwards the typing transition to every member except the sender
// and records it in the typing ledger.
func (r *Router) OnTyping(senderID string, isTyping bool) {
	r.mu.Lock()
	if isTyping {
		r.typing[senderID] = true
	} else {
		delete(r.typing, senderID)
	}
	r.mu.Unlock()

	payload, err := EncodeTyping(senderID, isTyping)
	if err != nil {
		r.logger.Error("Failed to encode typing event", "participant_id", senderID, "error", err)
		return
	}
	r.broadcastExcept(senderID, payload)
}

// OnDisconnect removes the participant from the session registry. If the
// ledger still marks it as typing, the remaining members first get a derived
// typing:false so no peer is left showing a stale indicator. No "user left"
// payload is broadcast; transport-level closure is the only leave signal.
func (r *Router) OnDisconnect(id string) {
	r.mu.Lock()
	wasTyping := r.typing[id]
	delete(r.typing, id)
	r.mu.Unlock()

	if wasTyping {
		if payload, err := EncodeTyping(id, false); err == nil {
			r.broadcastExcept(id, payload)
		}
	}

	r.registry.Unregister(id)
}

// broadcastExcept delivers payload to every current member except senderID.
// Membership is snapshotted once; members that vanish before their send are
// skipped silently.
func (r *Router) broadcastExcept(senderID string, payload []byte) {
	members := r.registry.Members()
	delivered := 0
	for _, id := range members {
		if id == senderID {
			continue
		}
		ch, ok := r.registry.Channel(id)
		if !ok {
			continue
		}
		ch.TrySend(payload)
		delivered++
	}
	r.logger.Debug("Forwarded event", "sender_id", senderID, "recipient_count", delivered)
}
