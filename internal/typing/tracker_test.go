package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_StartStop(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.Apply("alice", true))
	assert.True(t, tr.IsTyping("alice"))
	assert.Equal(t, []string{"alice"}, tr.Typing())

	assert.True(t, tr.Apply("alice", false))
	assert.False(t, tr.IsTyping("alice"))
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_RepeatedStartIsIdempotent(t *testing.T) {
	tr := NewTracker()

	tr.Apply("alice", true)
	before := tr.Len()

	// A second true before any false must not grow the set.
	changed := tr.Apply("alice", true)
	assert.False(t, changed)
	assert.Equal(t, before, tr.Len())
	assert.Equal(t, []string{"alice"}, tr.Typing())
}

func TestTracker_StopForAbsentIDIsNoOp(t *testing.T) {
	tr := NewTracker()
	tr.Apply("alice", true)

	changed := tr.Apply("bob", false)
	assert.False(t, changed)
	assert.Equal(t, []string{"alice"}, tr.Typing())
}

func TestTracker_TypingSorted(t *testing.T) {
	tr := NewTracker()
	tr.Apply("carol", true)
	tr.Apply("alice", true)
	tr.Apply("bob", true)

	assert.Equal(t, []string{"alice", "bob", "carol"}, tr.Typing())
}

func TestTracker_RemoveClearsDisconnectedPeer(t *testing.T) {
	tr := NewTracker()
	tr.Apply("alice", true)
	tr.Apply("bob", true)

	tr.Remove("alice")
	assert.False(t, tr.IsTyping("alice"))
	assert.Equal(t, []string{"bob"}, tr.Typing())

	// Removing an id that was never typing is fine.
	tr.Remove("carol")
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()
	tr.Apply("alice", true)
	tr.Apply("bob", true)

	tr.Reset()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Typing())
}
