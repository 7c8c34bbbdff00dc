package typing

import (
	"sort"
	"sync"
)

// Tracker maintains one observer's view of which other participants are
// currently typing. It consumes already-decided boolean transitions; the
// timing that decides when a sender stops typing lives on the sending side
// (see Debouncer).
//
// Set semantics throughout: a repeated start is a no-op, a stop for an id
// that is not present is a no-op.
type Tracker struct {
	mu      sync.RWMutex
	typists map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{typists: make(map[string]struct{})}
}

// Apply records a typing transition for the observed participant.
// It reports whether the tracked set actually changed, so callers can skip
// redundant display updates.
func (t *Tracker) Apply(participantID string, isTyping bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, present := t.typists[participantID]
	if isTyping {
		if present {
			return false
		}
		t.typists[participantID] = struct{}{}
		return true
	}
	if !present {
		return false
	}
	delete(t.typists, participantID)
	return true
}

// IsTyping reports whether the observed participant is believed typing.
func (t *Tracker) IsTyping(participantID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.typists[participantID]
	return ok
}

// Typing returns the ids currently believed typing, sorted for stable display.
func (t *Tracker) Typing() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]string, 0, len(t.typists))
	for id := range t.typists {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Remove clears any typing belief for a participant. Used when the observer
// learns through the transport that the participant disconnected, so a stale
// entry does not linger waiting for a false that will never arrive.
func (t *Tracker) Remove(participantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.typists, participantID)
}

// Len returns the number of participants currently believed typing.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.typists)
}

// Reset drops all tracked state. A tracker is rebuilt from empty on each
// connection lifetime.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.typists = make(map[string]struct{})
}
