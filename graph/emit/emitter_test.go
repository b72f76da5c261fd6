package emit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, false)

	l.Emit(Event{SessionID: "s1", Step: 2, NodeID: "brief", Msg: EventNodeFinished,
		Meta: map[string]any{"duration_ms": int64(12)}})
	l.Emit(Event{SessionID: "s1", Msg: EventRunStarted})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	first := lines[0]
	for _, want := range []string{"[node_finished]", "session=s1", "step=2", "node=brief", `"duration_ms":12`} {
		if !strings.Contains(first, want) {
			t.Errorf("line %q missing %q", first, want)
		}
	}
	// No node, no meta: those fields are omitted entirely.
	second := lines[1]
	if strings.Contains(second, "node=") || strings.Contains(second, "meta=") {
		t.Errorf("line %q carries empty fields", second)
	}
}

func TestLogEmitterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, true)

	l.Emit(Event{SessionID: "s1", Step: 1, NodeID: "plan", Msg: EventNodeStarted})
	l.Emit(Event{SessionID: "s1", Step: 1, Msg: EventCheckpointSaved,
		Meta: map[string]any{"status": "running"}})

	scanner := bufio.NewScanner(&buf)
	var decoded []map[string]any
	for scanner.Scan() {
		var obj map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line is not valid JSON: %q", scanner.Text())
		}
		decoded = append(decoded, obj)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d JSON lines, want 2", len(decoded))
	}
	if decoded[0]["msg"] != EventNodeStarted || decoded[0]["node_id"] != "plan" || decoded[0]["step"] != float64(1) {
		t.Errorf("first line = %v", decoded[0])
	}
	if _, present := decoded[1]["node_id"]; present {
		t.Errorf("empty node_id not omitted: %v", decoded[1])
	}
	meta, _ := decoded[1]["meta"].(map[string]any)
	if meta["status"] != "running" {
		t.Errorf("meta lost: %v", decoded[1])
	}
}

func TestBufferedEmitter(t *testing.T) {
	b := NewBufferedEmitter(3)
	for i := 1; i <= 5; i++ {
		b.Emit(Event{SessionID: "s1", Step: i, Msg: EventNodeStarted})
	}

	events := b.Events()
	if len(events) != 3 {
		t.Fatalf("buffer holds %d events, want 3", len(events))
	}
	if events[0].Step != 3 || events[2].Step != 5 {
		t.Errorf("ring did not keep the newest events: %v", events)
	}

	b.Emit(Event{SessionID: "s2", Step: 1, Msg: EventRunFailed})
	if got := b.BySession("s2"); len(got) != 1 || got[0].Msg != EventRunFailed {
		t.Errorf("BySession(s2) = %v", got)
	}
	if got := b.ByMsg(EventNodeStarted); len(got) != 2 {
		t.Errorf("ByMsg returned %d events, want 2", len(got))
	}

	b.Reset()
	if len(b.Events()) != 0 {
		t.Error("reset did not clear the buffer")
	}
}

func TestMultiEmitter(t *testing.T) {
	a := NewBufferedEmitter(0)
	b := NewBufferedEmitter(0)
	m := MultiEmitter{a, NewNullEmitter(), b}

	m.Emit(Event{SessionID: "s1", Msg: EventRunStarted})

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Errorf("fan-out reached %d/%d emitters, want 1/1", len(a.Events()), len(b.Events()))
	}
}
