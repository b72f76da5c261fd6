package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/dshills/graphflow/graph/model"
)

func TestNew(t *testing.T) {
	if _, err := New("", ""); err == nil {
		t.Error("expected error for empty api key")
	}

	c, err := New("sk-ant-test", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.Name() != DefaultModel {
		t.Errorf("default model = %q, want %q", c.Name(), DefaultModel)
	}
}

func TestSplitSystem(t *testing.T) {
	system, conversation := splitSystem([]model.Message{
		{Role: model.RoleSystem, Content: "be terse"},
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi"},
		{Role: model.RoleSystem, Content: "stay polite"},
	})

	if system != "be terse\n\nstay polite" {
		t.Errorf("system = %q", system)
	}
	if len(conversation) != 2 {
		t.Fatalf("conversation has %d turns, want 2", len(conversation))
	}
	if conversation[0].Role != anthropic.MessageParamRoleUser {
		t.Errorf("first turn role = %q, want user", conversation[0].Role)
	}
	if conversation[1].Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("second turn role = %q, want assistant", conversation[1].Role)
	}
}

func TestSplitSystemNoSystemPrompt(t *testing.T) {
	system, conversation := splitSystem([]model.Message{
		{Role: model.RoleUser, Content: "hello"},
	})
	if system != "" {
		t.Errorf("system = %q, want empty", system)
	}
	if len(conversation) != 1 {
		t.Errorf("conversation has %d turns, want 1", len(conversation))
	}
}
