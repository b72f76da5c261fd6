package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestSchemaMerge(t *testing.T) {
	t.Run("default overwrite for unregistered fields", func(t *testing.T) {
		schema := NewSchema()
		merged, err := schema.Merge(State{"topic": "old", "keep": "me"}, State{"topic": "new"})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if merged["topic"] != "new" {
			t.Errorf("expected topic overwritten to %q, got %v", "new", merged["topic"])
		}
		if merged["keep"] != "me" {
			t.Errorf("expected untouched field carried over, got %v", merged["keep"])
		}
	})

	t.Run("fields absent from delta carry over", func(t *testing.T) {
		schema := NewSchema()
		merged, err := schema.Merge(State{"a": 1, "b": 2}, State{})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if len(merged) != 2 {
			t.Errorf("expected 2 fields, got %d", len(merged))
		}
	})

	t.Run("nil delta is a no-op", func(t *testing.T) {
		schema := NewSchema()
		merged, err := schema.Merge(State{"a": 1}, nil)
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if merged["a"] != 1 {
			t.Errorf("expected a=1, got %v", merged["a"])
		}
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		schema := NewSchema()
		current := State{"a": "old"}
		delta := State{"a": "new", "b": "added"}
		if _, err := schema.Merge(current, delta); err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if current["a"] != "old" {
			t.Errorf("current state mutated: %v", current)
		}
		if _, leaked := current["b"]; leaked {
			t.Errorf("delta field leaked into current state")
		}
	})

	t.Run("registered reducer is applied", func(t *testing.T) {
		schema := NewSchema().Field("notes", Append)
		merged, err := schema.Merge(State{"notes": []any{"one"}}, State{"notes": []any{"two"}})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		want := []any{"one", "two"}
		if !reflect.DeepEqual(merged["notes"], want) {
			t.Errorf("expected %v, got %v", want, merged["notes"])
		}
	})

	t.Run("incompatible delta yields MergeError", func(t *testing.T) {
		schema := NewSchema().Field("messages", Messages)
		_, err := schema.Merge(State{}, State{"messages": "not a list"})
		if err == nil {
			t.Fatal("expected a merge error")
		}
		var mergeErr *MergeError
		if !errors.As(err, &mergeErr) {
			t.Fatalf("expected *MergeError, got %T: %v", err, err)
		}
		if mergeErr.Field != "messages" {
			t.Errorf("expected field %q, got %q", "messages", mergeErr.Field)
		}
	})
}

func TestMessagesReducer(t *testing.T) {
	t.Run("new identifier appends at the end", func(t *testing.T) {
		cur := []Message{{ID: "m1", Role: "user", Content: "hi"}}
		out, err := Messages(cur, []Message{{ID: "m2", Role: "assistant", Content: "hello"}})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		msgs := out.([]Message)
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[1].ID != "m2" {
			t.Errorf("expected m2 appended last, got %q", msgs[1].ID)
		}
	})

	t.Run("duplicate identifier replaces in place", func(t *testing.T) {
		cur := []Message{
			{ID: "m1", Content: "first"},
			{ID: "m2", Content: "second"},
			{ID: "m3", Content: "third"},
		}
		out, err := Messages(cur, []Message{{ID: "m2", Content: "revised"}})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		msgs := out.([]Message)
		if len(msgs) != 3 {
			t.Fatalf("sequence length changed: expected 3, got %d", len(msgs))
		}
		if msgs[1].ID != "m2" || msgs[1].Content != "revised" {
			t.Errorf("expected m2 updated in place, got %+v", msgs[1])
		}
		if msgs[0].ID != "m1" || msgs[2].ID != "m3" {
			t.Errorf("neighbor order disturbed: %+v", msgs)
		}
	})

	t.Run("update and append in one delta", func(t *testing.T) {
		cur := []Message{{ID: "m1", Content: "first"}}
		out, err := Messages(cur, []Message{
			{ID: "m1", Content: "revised"},
			{ID: "m2", Content: "second"},
		})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		msgs := out.([]Message)
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].Content != "revised" || msgs[1].ID != "m2" {
			t.Errorf("unexpected result: %+v", msgs)
		}
	})

	t.Run("entries without an identifier always append", func(t *testing.T) {
		out, err := Messages(nil, []Message{{Content: "anon"}, {Content: "anon"}})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if len(out.([]Message)) != 2 {
			t.Errorf("expected both anonymous entries kept, got %v", out)
		}
	})

	t.Run("accepts JSON-shaped maps after a store round trip", func(t *testing.T) {
		cur := []any{
			map[string]any{"id": "m1", "role": "user", "content": "hi"},
		}
		out, err := Messages(cur, []Message{{ID: "m1", Role: "user", Content: "hi again"}})
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		msgs := out.([]Message)
		if len(msgs) != 1 || msgs[0].Content != "hi again" {
			t.Errorf("expected in-place update across shapes, got %+v", msgs)
		}
	})

	t.Run("current reducer input is not mutated", func(t *testing.T) {
		cur := []Message{{ID: "m1", Content: "first"}}
		if _, err := Messages(cur, []Message{{ID: "m1", Content: "revised"}}); err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if cur[0].Content != "first" {
			t.Errorf("current sequence mutated: %+v", cur)
		}
	})

	t.Run("rejects non-sequence values", func(t *testing.T) {
		if _, err := Messages(nil, 42); err == nil {
			t.Error("expected an error for a non-sequence delta")
		}
		if _, err := Messages("bad", []Message{}); err == nil {
			t.Error("expected an error for a non-sequence current value")
		}
	})
}

func TestAppendReducer(t *testing.T) {
	tests := []struct {
		name    string
		current any
		delta   any
		want    []any
		wantErr bool
	}{
		{name: "both nil", current: nil, delta: nil, want: []any{}},
		{name: "append to nil", current: nil, delta: []any{"a"}, want: []any{"a"}},
		{name: "concat", current: []any{"a"}, delta: []any{"b", "c"}, want: []any{"a", "b", "c"}},
		{name: "string slices accepted", current: []string{"a"}, delta: []string{"b"}, want: []any{"a", "b"}},
		{name: "scalar delta rejected", current: []any{"a"}, delta: "b", wantErr: true},
		{name: "scalar current rejected", current: 7, delta: []any{"b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Append(tt.current, tt.delta)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("append failed: %v", err)
			}
			if !reflect.DeepEqual(out, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, out)
			}
		})
	}
}

func TestDeepCopy(t *testing.T) {
	t.Run("copies are independent", func(t *testing.T) {
		original := State{"nested": map[string]any{"k": "v"}}
		copied, err := deepCopy(original)
		if err != nil {
			t.Fatalf("deep copy failed: %v", err)
		}
		copied["nested"].(map[string]any)["k"] = "changed"
		if original["nested"].(map[string]any)["k"] != "v" {
			t.Error("mutating the copy reached the original")
		}
	})

	t.Run("nil state copies to empty", func(t *testing.T) {
		copied, err := deepCopy(nil)
		if err != nil {
			t.Fatalf("deep copy failed: %v", err)
		}
		if copied == nil || len(copied) != 0 {
			t.Errorf("expected empty state, got %v", copied)
		}
	})
}
