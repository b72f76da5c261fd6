// Package google adapts the Gemini API to the model.ChatModel interface.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/graphflow/graph/model"
)

// DefaultModel is used when no model name is given.
const DefaultModel = "gemini-2.5-flash"

// Client is a model.ChatModel backed by the official generative-ai-go SDK.
// Close it when done; the SDK holds a gRPC connection.
type Client struct {
	client    *genai.Client
	modelName string
}

// New creates a Gemini chat client. apiKey comes from
// https://makersuite.google.com/app/apikey; an empty modelName selects
// DefaultModel.
func New(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google: api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}
	return &Client{client: client, modelName: modelName}, nil
}

// Name implements model.ChatModel.
func (c *Client) Name() string { return c.modelName }

// Chat implements model.ChatModel. System messages become the model's
// system instruction; the remaining turns are flattened into content parts.
func (c *Client) Chat(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	gm := c.client.GenerativeModel(c.modelName)
	if req.Temperature > 0 {
		gm.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	var system []string
	var parts []genai.Part
	for _, msg := range req.Messages {
		if msg.Role == model.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
	}
	if len(system) > 0 {
		gm.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return model.Response{}, fmt.Errorf("google generate content: %w", err)
	}

	var text strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}

	out := model.Response{Text: text.String()}
	if resp.UsageMetadata != nil {
		out.Usage = model.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
