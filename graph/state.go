// Package graph provides a field-merged, checkpointed workflow execution
// engine: a directed graph of nodes that share one evolving state, with
// suspend/resume support for long-running sessions.
package graph

import (
	"encoding/json"
	"fmt"
)

// State is the shared workflow state: a mapping from field name to value.
//
// State is a type alias (not a defined type) so that checkpoint stores can
// persist it without importing this package. Values must be JSON-serializable;
// after a round trip through a durable store, numbers come back as float64 and
// nested structures as map[string]any / []any, which the built-in reducers
// accept.
//
// Nodes never mutate State directly. Each step hands the node a deep-copied
// snapshot and merges the returned delta through the Schema, producing a new
// State value.
type State = map[string]any

// Reducer merges a field's incoming delta value into its current value and
// returns the new value. Reducers must be pure: no side effects, no mutation
// of either operand.
//
// current is nil when the field has never been set. A delta value whose type
// is incompatible with the reducer is reported as an error; the engine wraps
// it in a *MergeError and fails the step without writing a checkpoint.
type Reducer func(current, delta any) (any, error)

// Schema declares the merge behavior of each state field.
//
// Fields are registered once, at graph-definition time. A field without a
// registered reducer defaults to Overwrite (last write wins). Registering
// fields concurrently with execution is not supported.
//
// Example:
//
//	schema := graph.NewSchema().
//	    Field("messages", graph.Messages).
//	    Field("notes", graph.Append)
type Schema struct {
	reducers map[string]Reducer
}

// NewSchema creates an empty Schema. All fields default to Overwrite until
// registered otherwise.
func NewSchema() *Schema {
	return &Schema{reducers: make(map[string]Reducer)}
}

// Field registers a reducer for a state field and returns the Schema for
// chaining. Registering the same field twice replaces the earlier reducer.
func (s *Schema) Field(name string, r Reducer) *Schema {
	if r != nil {
		s.reducers[name] = r
	}
	return s
}

// Merge applies delta to current field by field and returns the resulting
// state. Neither input is mutated. Fields absent from delta carry over
// unchanged; each field present in delta goes through its registered reducer
// (Overwrite when unregistered).
//
// Merge is deterministic: one step applies exactly one delta, and each field
// is merged independently, so iteration order over delta cannot affect the
// result.
func (s *Schema) Merge(current, delta State) (State, error) {
	next := make(State, len(current)+len(delta))
	for k, v := range current {
		next[k] = v
	}
	for field, dv := range delta {
		reducer := s.reducers[field]
		if reducer == nil {
			reducer = Overwrite
		}
		merged, err := reducer(next[field], dv)
		if err != nil {
			return nil, &MergeError{Field: field, Cause: err}
		}
		next[field] = merged
	}
	return next, nil
}

// Overwrite is the default reducer: the delta value replaces the current
// value unconditionally.
func Overwrite(_, delta any) (any, error) {
	return delta, nil
}

// Append concatenates list-valued fields. The current and delta values must
// each be a slice (or nil/absent); the result appends every delta entry after
// the current entries.
func Append(current, delta any) (any, error) {
	cur, err := toList(current)
	if err != nil {
		return nil, fmt.Errorf("current value: %w", err)
	}
	add, err := toList(delta)
	if err != nil {
		return nil, fmt.Errorf("delta value: %w", err)
	}
	out := make([]any, 0, len(cur)+len(add))
	out = append(out, cur...)
	out = append(out, add...)
	return out, nil
}

// Message is an identifiable entry in an ordered, Messages-merged field,
// shaped for conversation history. ID is the dedup key; two messages with the
// same ID are the same logical entry at different revisions.
type Message struct {
	ID      string         `json:"id"`
	Role    string         `json:"role"`
	Content string         `json:"content"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Messages is the ordered-append-with-dedup reducer for conversation-style
// fields. Both operands are ordered sequences of identifiable entries:
//
//   - a delta entry whose ID is not yet present appends at the end;
//   - a delta entry whose ID already exists replaces the existing entry in
//     place, keeping the position of the first occurrence and leaving the
//     sequence length unchanged.
//
// Accepted element shapes are Message values, *Message, and map[string]any
// with a string "id" key (what JSON deserialization of a checkpoint
// produces). Entries without an ID are always appended. Any other value shape
// is an error.
func Messages(current, delta any) (any, error) {
	cur, err := toMessages(current)
	if err != nil {
		return nil, fmt.Errorf("current value: %w", err)
	}
	add, err := toMessages(delta)
	if err != nil {
		return nil, fmt.Errorf("delta value: %w", err)
	}

	out := make([]Message, len(cur))
	copy(out, cur)

	index := make(map[string]int, len(out))
	for i, m := range out {
		if m.ID != "" {
			index[m.ID] = i
		}
	}

	for _, m := range add {
		if m.ID != "" {
			if at, seen := index[m.ID]; seen {
				out[at] = m
				continue
			}
			index[m.ID] = len(out)
		}
		out = append(out, m)
	}
	return out, nil
}

// toList normalizes a field value to []any for the Append reducer.
func toList(v any) ([]any, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return list, nil
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

// toMessages normalizes a field value to []Message for the Messages reducer.
func toMessages(v any) ([]Message, error) {
	switch seq := v.(type) {
	case nil:
		return nil, nil
	case []Message:
		return seq, nil
	case Message:
		return []Message{seq}, nil
	case *Message:
		if seq == nil {
			return nil, nil
		}
		return []Message{*seq}, nil
	case []any:
		out := make([]Message, 0, len(seq))
		for i, el := range seq {
			m, err := toMessage(el)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			out = append(out, m)
		}
		return out, nil
	case []map[string]any:
		out := make([]Message, 0, len(seq))
		for i, el := range seq {
			m, err := toMessage(el)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a message list, got %T", v)
	}
}

func toMessage(v any) (Message, error) {
	switch m := v.(type) {
	case Message:
		return m, nil
	case *Message:
		if m == nil {
			return Message{}, fmt.Errorf("nil message")
		}
		return *m, nil
	case map[string]any:
		var out Message
		if id, ok := m["id"].(string); ok {
			out.ID = id
		}
		if role, ok := m["role"].(string); ok {
			out.Role = role
		}
		if content, ok := m["content"].(string); ok {
			out.Content = content
		}
		if meta, ok := m["meta"].(map[string]any); ok {
			out.Meta = meta
		}
		return out, nil
	default:
		return Message{}, fmt.Errorf("expected a message, got %T", v)
	}
}

// deepCopy clones a state via a JSON round trip. Works for anything
// JSON-serializable, which is already a requirement for checkpointing; it is
// how node snapshots are isolated from the engine's working state.
func deepCopy(s State) (State, error) {
	if s == nil {
		return State{}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if out == nil {
		out = State{}
	}
	return out, nil
}
