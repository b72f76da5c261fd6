package emit

// NullEmitter discards every event. Useful as an explicit "no observability"
// choice and as a placeholder in benchmarks.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit implements Emitter by doing nothing.
func (*NullEmitter) Emit(Event) {}
