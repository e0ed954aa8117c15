// Package llm adapts the Anthropic API to the two generation paths the
// conversation core consumes: free-text replies and schema-constrained
// structured output.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// digestToolName is the forced tool used to obtain structured output.
const digestToolName = "record_digest"

// Config holds the model settings for both generation paths.
type Config struct {
	// Model is the Claude model id. Empty selects a sensible default.
	Model string

	// MaxTokens caps response length (default 1024).
	MaxTokens int64
}

// Client wraps an Anthropic client with fixed model settings.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewClient creates an adapter around an existing Anthropic client.
func NewClient(client *anthropic.Client, cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// New creates an adapter with its own Anthropic client for the given key.
func New(apiKey string, cfg Config) *Client {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewClient(&c, cfg)
}

// Generate produces a free-text reply for the prompt. system may be empty.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return strings.TrimSpace(text), nil
}

// GenerateStructured forces a single tool call whose input conforms to the
// supplied JSON schema and returns that input verbatim. Validation of the
// payload is the caller's concern; absence of the tool call is an error
// here.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema map[string]interface{}) (json.RawMessage, error) {
	tool := anthropic.ToolParam{
		Name:        digestToolName,
		Description: anthropic.String("Record the structured analysis of the conversation segment."),
		InputSchema: toInputSchema(schema),
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{{OfTool: &tool}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: digestToolName},
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == digestToolName {
			return json.RawMessage(block.Input), nil
		}
	}
	return nil, fmt.Errorf("response contained no %s tool call", digestToolName)
}

// toInputSchema converts a plain schema map into the API's tool input
// schema shape.
func toInputSchema(schema map[string]interface{}) anthropic.ToolInputSchemaParam {
	out := anthropic.ToolInputSchemaParam{}
	if props, ok := schema["properties"]; ok {
		out.Properties = props
	}
	if req, ok := schema["required"].([]string); ok {
		out.Required = req
	}
	return out
}
