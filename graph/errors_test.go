package graph

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &ValidationError{Code: "DUPLICATE_NODE", Message: "duplicate node id: a"}, "DUPLICATE_NODE"},
		{"merge", &MergeError{Field: "messages", Cause: cause}, `"messages"`},
		{"route", &RouteError{NodeID: "a", Target: "ghost"}, `"ghost"`},
		{"unroutable", &RouteError{NodeID: "a", Cause: ErrUnroutable}, "no route"},
		{"node", &NodeError{NodeID: "fetch", Step: 3, Cause: cause}, "step 3"},
		{"store", &StoreError{Op: "put", SessionID: "s1", Cause: cause}, `"s1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if msg := tt.err.Error(); !strings.Contains(msg, tt.want) {
				t.Errorf("Error() = %q, missing %q", msg, tt.want)
			}
		})
	}

	for _, err := range []error{
		&MergeError{Field: "f", Cause: cause},
		&RouteError{NodeID: "a", Cause: cause},
		&NodeError{NodeID: "a", Step: 1, Cause: cause},
		&StoreError{Op: "get", SessionID: "s", Cause: cause},
	} {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}

	if !errors.Is(&RouteError{NodeID: "a", Cause: ErrUnroutable}, ErrUnroutable) {
		t.Error("unroutable route error does not match ErrUnroutable")
	}
}
