// Package anthropic adapts the Claude Messages API to the model.ChatModel
// interface.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/graphflow/graph/model"
)

// DefaultModel is used when no model name is given.
const DefaultModel = "claude-3-5-haiku-20241022"

// defaultMaxTokens applies when the request sets none; the Messages API
// requires an explicit bound.
const defaultMaxTokens = 4096

// Client is a model.ChatModel backed by the official anthropic-sdk-go.
type Client struct {
	client    anthropic.Client
	modelName string
}

// New creates a Claude chat client. apiKey comes from
// https://console.anthropic.com/; an empty modelName selects DefaultModel.
func New(apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		modelName: modelName,
	}, nil
}

// Name implements model.ChatModel.
func (c *Client) Name() string { return c.modelName }

// Chat implements model.ChatModel. System messages are extracted into the
// API's separate system parameter.
func (c *Client) Chat(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	system, conversation := splitSystem(req.Messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: maxTokens,
		Messages:  conversation,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return model.Response{}, fmt.Errorf("anthropic message: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return model.Response{
		Text: text.String(),
		Usage: model.Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
		},
	}, nil
}

// splitSystem separates system prompts (concatenated, newline-joined) from
// the user/assistant turns the Messages API accepts.
func splitSystem(messages []model.Message) (string, []anthropic.MessageParam) {
	var system []string
	conversation := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, msg.Content)
		case model.RoleAssistant:
			conversation = append(conversation, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			conversation = append(conversation, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return strings.Join(system, "\n\n"), conversation
}
