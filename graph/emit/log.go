package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogEmitter writes events as structured log lines.
//
// Two formats:
//
//   - text (default): human-readable key=value lines, e.g.
//     [node_finished] session=01J9... step=2 node=brief meta={"duration_ms":12}
//   - JSON: one object per line, for log shippers:
//     {"session_id":"01J9...","step":2,"node_id":"brief","msg":"node_finished"}
//
// Writes are serialized with a mutex so concurrent sessions produce whole
// lines.
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter writing to w (os.Stdout when nil);
// jsonMode selects line-delimited JSON over the text format.
func NewLogEmitter(w io.Writer, jsonMode bool) *LogEmitter {
	if w == nil {
		w = os.Stdout
	}
	return &LogEmitter{writer: w, jsonMode: jsonMode}
}

// Emit implements Emitter. Write errors are swallowed: logging must never
// fail the workflow.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogEmitter) emitJSON(event Event) {
	line, err := json.Marshal(struct {
		SessionID string         `json:"session_id"`
		Step      int            `json:"step"`
		NodeID    string         `json:"node_id,omitempty"`
		Msg       string         `json:"msg"`
		Meta      map[string]any `json:"meta,omitempty"`
	}{event.SessionID, event.Step, event.NodeID, event.Msg, event.Meta})
	if err != nil {
		return
	}
	_, _ = l.writer.Write(append(line, '\n'))
}

func (l *LogEmitter) emitText(event Event) {
	_, _ = fmt.Fprintf(l.writer, "[%s] session=%s step=%d", event.Msg, event.SessionID, event.Step)
	if event.NodeID != "" {
		_, _ = fmt.Fprintf(l.writer, " node=%s", event.NodeID)
	}
	if len(event.Meta) > 0 {
		if meta, err := json.Marshal(event.Meta); err == nil {
			_, _ = fmt.Fprintf(l.writer, " meta=%s", meta)
		}
	}
	_, _ = fmt.Fprintln(l.writer)
}
