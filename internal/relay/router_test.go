package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/chatrelay/internal/pubsub"
	"github.com/nfrund/chatrelay/internal/session"
)

// fakeChannel records everything delivered to one participant.
type fakeChannel struct {
	mu     sync.Mutex
	frames [][]byte
}

func (f *fakeChannel) TrySend(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, append([]byte(nil), payload...))
}

func (f *fakeChannel) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([][]byte, len(f.frames))
	copy(result, f.frames)
	return result
}

func (f *fakeChannel) chatBodies(t *testing.T) []string {
	t.Helper()
	var bodies []string
	for _, frame := range f.received() {
		var ev ChatEvent
		require.NoError(t, json.Unmarshal(frame, &ev))
		if ev.Type == TypeChat {
			bodies = append(bodies, ev.Body)
		}
	}
	return bodies
}

func (f *fakeChannel) typingEvents(t *testing.T) []TypingEvent {
	t.Helper()
	var events []TypingEvent
	for _, frame := range f.received() {
		var head struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(frame, &head))
		if head.Type != TypeTyping {
			continue
		}
		var ev TypingEvent
		require.NoError(t, json.Unmarshal(frame, &ev))
		events = append(events, ev)
	}
	return events
}

// mockSubscriber satisfies pubsub.Subscriber for tests that drive the router
// directly instead of through the bus.
type mockSubscriber struct{}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string, handler pubsub.Handler) error {
	return nil
}

func (m *mockSubscriber) Close() error { return nil }

func newTestRouter() (*Router, *session.Registry) {
	registry := session.NewRegistry()
	return NewRouter(registry, &mockSubscriber{}), registry
}

func connectN(r *Router, n int) ([]string, []*fakeChannel) {
	ids := make([]string, n)
	channels := make([]*fakeChannel, n)
	for i := 0; i < n; i++ {
		channels[i] = &fakeChannel{}
		ids[i] = r.Connect(channels[i])
	}
	return ids, channels
}

func TestRouter_ChatExcludesSender(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 3)

	r.OnChatMessage(ids[0], "hi")

	assert.Empty(t, channels[0].received(), "sender must not receive its own message")
	assert.Equal(t, []string{"hi"}, channels[1].chatBodies(t))
	assert.Equal(t, []string{"hi"}, channels[2].chatBodies(t))
}

func TestRouter_ChatForwardedVerbatim(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 2)

	// No validation or trimming: empty and whitespace payloads forward as-is.
	r.OnChatMessage(ids[0], "")
	r.OnChatMessage(ids[0], "   ")
	r.OnChatMessage(ids[0], "<b>&raw</b>")

	assert.Equal(t, []string{"", "   ", "<b>&raw</b>"}, channels[1].chatBodies(t))
}

func TestRouter_TypingExcludesSender(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 3)

	r.OnTyping(ids[1], true)

	assert.Empty(t, channels[1].received())
	for _, ch := range []*fakeChannel{channels[0], channels[2]} {
		events := ch.typingEvents(t)
		require.Len(t, events, 1)
		assert.Equal(t, ids[1], events[0].ParticipantID)
		assert.True(t, events[0].IsTyping)
	}
}

func TestRouter_DisconnectRemovesFromFanOut(t *testing.T) {
	r, registry := newTestRouter()
	ids, channels := connectN(r, 3)

	r.OnDisconnect(ids[2])
	assert.Equal(t, 2, registry.Len())

	r.OnChatMessage(ids[0], "after")

	assert.Equal(t, []string{"after"}, channels[1].chatBodies(t))
	assert.Empty(t, channels[2].received(), "disconnected participant must not receive anything")
}

func TestRouter_DisconnectClearsStaleTyping(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 3)

	r.OnTyping(ids[0], true)
	r.OnDisconnect(ids[0])

	// Peers get a derived typing:false so no indicator is left dangling.
	events := channels[1].typingEvents(t)
	require.Len(t, events, 2)
	assert.True(t, events[0].IsTyping)
	assert.False(t, events[1].IsTyping)
	assert.Equal(t, ids[0], events[1].ParticipantID)
}

func TestRouter_DisconnectWithoutTypingEmitsNothing(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 2)

	r.OnTyping(ids[0], true)
	r.OnTyping(ids[0], false)
	r.OnDisconnect(ids[0])

	events := channels[1].typingEvents(t)
	require.Len(t, events, 2, "a clean stop must not be followed by a disconnect-derived false")
}

func TestRouter_DisconnectIsIdempotent(t *testing.T) {
	r, registry := newTestRouter()
	ids, _ := connectN(r, 2)

	r.OnDisconnect(ids[0])
	assert.NotPanics(t, func() { r.OnDisconnect(ids[0]) })
	assert.Equal(t, 1, registry.Len())
}

func TestRouter_HandleInboundDispatchesChat(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 2)

	payload, err := json.Marshal(InboundEvent{Type: TypeChat, Body: "over the bus"})
	require.NoError(t, err)

	err = r.handleInbound(context.Background(), pubsub.Message{
		Topic:    "session.events.inbound",
		SenderID: ids[0],
		Payload:  payload,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"over the bus"}, channels[1].chatBodies(t))
	assert.Empty(t, channels[0].received())
}

func TestRouter_HandleInboundDispatchesTyping(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 2)

	payload, err := json.Marshal(InboundEvent{Type: TypeTyping, IsTyping: true})
	require.NoError(t, err)

	err = r.handleInbound(context.Background(), pubsub.Message{
		SenderID: ids[0],
		Payload:  payload,
	})
	require.NoError(t, err)

	events := channels[1].typingEvents(t)
	require.Len(t, events, 1)
	assert.Equal(t, ids[0], events[0].ParticipantID)
	assert.True(t, events[0].IsTyping)
}

func TestRouter_HandleInboundIsolatesBadPayloads(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 2)

	for _, payload := range [][]byte{
		[]byte("not json at all"),
		[]byte(`{"type":"unknown"}`),
		[]byte(`{"type":"typing","isTyping":"yes"}`),
		nil,
	} {
		err := r.handleInbound(context.Background(), pubsub.Message{
			SenderID: ids[0],
			Payload:  payload,
		})
		assert.NoError(t, err, "malformed payloads are dropped, never errors that stall the loop")
	}

	assert.Empty(t, channels[1].received())
}

func TestRouter_HandleInboundAfterSenderLeft(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 2)

	r.OnDisconnect(ids[0])

	payload, err := json.Marshal(InboundEvent{Type: TypeChat, Body: "late"})
	require.NoError(t, err)

	// An event raced past the disconnect: silently dropped.
	err = r.handleInbound(context.Background(), pubsub.Message{SenderID: ids[0], Payload: payload})
	assert.NoError(t, err)
	assert.Empty(t, channels[1].received())
}

func TestRouter_LoneParticipantChatGoesNowhere(t *testing.T) {
	r, _ := newTestRouter()
	ids, channels := connectN(r, 1)

	assert.NotPanics(t, func() { r.OnChatMessage(ids[0], "echo?") })
	assert.Empty(t, channels[0].received())
}
