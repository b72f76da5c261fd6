package emit

import "sync"

// BufferedEmitter keeps events in a bounded in-memory ring, newest last.
// Intended for tests and interactive debugging: run a session, then query
// what happened.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

// NewBufferedEmitter creates a buffer holding at most limit events; once
// full, the oldest events are dropped. limit <= 0 means unbounded.
func NewBufferedEmitter(limit int) *BufferedEmitter {
	return &BufferedEmitter{limit: limit}
}

// Emit implements Emitter.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	if b.limit > 0 && len(b.events) > b.limit {
		b.events = b.events[len(b.events)-b.limit:]
	}
}

// Events returns a copy of the buffered events in emission order.
func (b *BufferedEmitter) Events() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// BySession returns buffered events for one session, in emission order.
func (b *BufferedEmitter) BySession(sessionID string) []Event {
	return b.filter(func(e Event) bool { return e.SessionID == sessionID })
}

// ByMsg returns buffered events with the given name, in emission order.
func (b *BufferedEmitter) ByMsg(msg string) []Event {
	return b.filter(func(e Event) bool { return e.Msg == msg })
}

// Reset discards all buffered events.
func (b *BufferedEmitter) Reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

func (b *BufferedEmitter) filter(keep func(Event) bool) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Event
	for _, e := range b.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
