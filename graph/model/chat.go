// Package model provides chat-model adapters for node handlers that call
// LLMs. The engine itself never invokes a model; handlers do, through the
// provider-agnostic ChatModel interface, so a workflow can switch providers
// (or use the scriptable mock) without touching graph code.
package model

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation sent to or produced by a model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic chat completion request.
type Request struct {
	// Messages is the conversation so far, oldest first. System messages
	// are extracted and mapped to the provider's system mechanism.
	Messages []Message

	// Temperature, when positive, overrides the provider default.
	Temperature float64

	// MaxTokens, when positive, bounds the completion length. Providers
	// that require a bound (Anthropic) fall back to a default when zero.
	MaxTokens int
}

// Usage reports token consumption for one completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add returns the element-wise sum of two usages, for accumulating a
// session's consumption across steps.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
	}
}

// Response is a provider-agnostic chat completion.
type Response struct {
	// Text is the assistant's reply.
	Text string

	// Usage is the provider-reported token consumption, zero when the
	// provider omits it.
	Usage Usage
}

// ChatModel is the provider-agnostic chat interface. Implementations handle
// authentication, format conversion, and provider error translation, and
// must respect context cancellation.
type ChatModel interface {
	// Name identifies the backing model, e.g. "gpt-4o" or "mock".
	Name() string

	// Chat performs one completion.
	Chat(ctx context.Context, req Request) (Response, error)
}
