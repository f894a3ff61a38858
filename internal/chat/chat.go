// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat provides the model chat capability used by the classify,
// extract, and qa stages. The Client interface keeps stages testable with
// mock clients; the SDK-backed implementation is the only one used in
// production. Retries are the caller's responsibility — each stage re-prompts
// at most once with a stricter instruction.
package chat

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/litmine/pkg/types"
)

// Message is a single conversational message. Role is "system", "user", or
// "assistant"; system messages are lifted into the API's system prompt.
type Message struct {
	Role    string
	Content string
}

// Client is the chat capability: one prompt in, raw reply text out.
type Client interface {
	Chat(ctx context.Context, messages []Message, temperature float64, maxTokens int64) (string, error)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
	model  string
}

// NewClient creates a Client backed by the Anthropic SDK.
func NewClient(cfg types.AIConfig) Client {
	return &sdkClient{
		client: sdk.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}
}

// Chat sends the conversation and returns the concatenated text blocks of
// the reply.
func (c *sdkClient) Chat(ctx context.Context, messages []Message, temperature float64, maxTokens int64) (string, error) {
	var system []sdk.TextBlockParam
	var msgs []sdk.MessageParam

	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, sdk.TextBlockParam{Text: m.Content})
		case "assistant":
			msgs = append(msgs, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   maxTokens,
		Messages:    msgs,
		Temperature: sdk.Float(temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "chat: create message")
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
