package emit

// Emitter receives execution events.
//
// Implementations must be safe for concurrent use — independent sessions
// emit from their own goroutines — and must never panic or block the step
// loop: a slow backend should buffer or drop, not stall workflow execution.
type Emitter interface {
	// Emit delivers one event. Errors are handled internally; the step
	// loop neither knows nor cares whether delivery succeeded.
	Emit(event Event)
}

// MultiEmitter fans every event out to several emitters in order.
type MultiEmitter []Emitter

// Emit implements Emitter.
func (m MultiEmitter) Emit(event Event) {
	for _, e := range m {
		e.Emit(event)
	}
}
