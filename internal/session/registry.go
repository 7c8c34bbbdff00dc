package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Channel is the relay's view of one participant's bidirectional transport.
// TrySend must be non-blocking and best-effort: delivering to a channel that
// is closed, gone, or backed up is a silent no-op, never an error surfaced
// to the sender.
type Channel interface {
	TrySend(payload []byte)
}

// EventKind names a category of inbound participant event.
type EventKind string

const (
	EventChat   EventKind = "chat"
	EventTyping EventKind = "typing"
)

// HandlerFunc processes one inbound event from the participant it is bound to.
type HandlerFunc func(senderID string, payload []byte)

// entry is the registry's record for one live participant: its channel plus
// the explicit handler bindings for its connection. Handlers live here, not
// in per-connection closures, so disconnect deregisters them deterministically.
type entry struct {
	id       string
	channel  Channel
	handlers map[EventKind]HandlerFunc
	joinedAt time.Time
}

// Registry tracks the set of currently connected participants. An id is a
// member exactly while its channel is open; only connection establishment
// and connection loss mutate the set. All access goes through one exclusive
// lock, which serializes membership mutation against snapshotting.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *slog.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		logger:  slog.Default().With("component", "session"),
	}
}

// Register allocates a fresh participant id for an established channel, adds
// it to the live set, and returns it. Called exactly once per connection; a
// reconnecting client gets a new identity.
func (r *Registry) Register(ch Channel) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.entries[id] = &entry{
		id:       id,
		channel:  ch,
		handlers: make(map[EventKind]HandlerFunc),
		joinedAt: time.Now().UTC(),
	}
	total := len(r.entries)
	r.mu.Unlock()

	r.logger.Info("Participant registered", "participant_id", id, "total_participants", total)
	return id
}

// Unregister removes the participant and drops its handler bindings.
// Idempotent: unregistering an unknown or already-removed id is a no-op,
// which absorbs duplicate disconnect notifications from the transport.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	total := len(r.entries)
	r.mu.Unlock()

	if ok {
		r.logger.Info("Participant unregistered", "participant_id", id, "total_participants", total)
	}
}

// Members returns a snapshot of currently live participant ids. Membership
// may change immediately after the snapshot is taken; callers tolerate that
// by treating delivery to a vanished member as a no-op.
func (r *Registry) Members() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.entries))
	for id := range r.entries {
		members = append(members, id)
	}
	return members
}

// Channel returns the transport channel for a live participant.
func (r *Registry) Channel(id string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.channel, true
}

// Bind attaches a handler for one event kind to a live participant's entry.
// Binding to an id that already left is a no-op.
func (r *Registry) Bind(id string, kind EventKind, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.handlers[kind] = h
	}
}

// Handler returns the handler bound to a participant for the given event kind.
func (r *Registry) Handler(id string, kind EventKind) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	h, ok := e.handlers[kind]
	return h, ok
}

// Len returns the number of live participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
