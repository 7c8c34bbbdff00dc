package typing

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the idle gap after the last keystroke before a
// sender is considered to have stopped typing.
const DefaultDebounceWindow = 1000 * time.Millisecond

// Debouncer decides when a sender flips between typing and not typing.
//
// Every keystroke restarts a single-shot timer. The first keystroke of an
// idle period emits true; subsequent keystrokes inside the window emit
// nothing, so repeats are suppressed at the source rather than merely
// deduplicated by observers. When the window elapses with no further
// keystroke, exactly one false is emitted. Flush,
// called when the sender submits a message, cancels any pending timer and
// emits the false immediately so recipients never see a lingering indicator.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	emit   func(isTyping bool)
	timer  *time.Timer
	active bool
}

// NewDebouncer creates a debouncer that calls emit with each decided
// transition. A non-positive window falls back to DefaultDebounceWindow.
func NewDebouncer(window time.Duration, emit func(isTyping bool)) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window, emit: emit}
}

// Keystroke registers one keystroke, restarting the idle timer.
func (d *Debouncer) Keystroke() {
	d.mu.Lock()

	started := false
	if !d.active {
		d.active = true
		started = true
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.expire)

	d.mu.Unlock()

	// Emit outside the lock; the emit callback may publish or lock elsewhere.
	if started {
		d.emit(true)
	}
}

// expire fires when the idle window elapses without another keystroke.
func (d *Debouncer) expire() {
	d.mu.Lock()
	if !d.active {
		// A Flush won the race between timer fire and cancellation.
		d.mu.Unlock()
		return
	}
	d.active = false
	d.timer = nil
	d.mu.Unlock()

	d.emit(false)
}

// Flush cancels any pending idle timer and, if the sender was mid-typing,
// emits a single immediate false. Called on message send so the indicator
// clears without waiting for the window. No late timer-fired false can
// follow: the active flag is cleared before the emit.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	wasActive := d.active
	d.active = false
	d.mu.Unlock()

	if wasActive {
		d.emit(false)
	}
}

// Stop releases the timer without emitting anything. Used on shutdown.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.active = false
}

// Active reports whether the sender is currently considered typing.
func (d *Debouncer) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}
