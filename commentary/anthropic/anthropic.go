// Package anthropic provides a commentary adapter for the Anthropic Claude API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/enginemesh/commentary"
)

// Options configures the Anthropic commentary adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Commentator wraps the Anthropic Messages API behind the generic
// commentary.Commentator interface.
type Commentator struct {
	client *anthropic.Client
	opts   Options
}

// NewCommentator creates a new Anthropic commentator using the official client
func NewCommentator(optFns ...func(o *Options)) *Commentator {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.4,
		MaxTokens:   320,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Commentator{
		client: &client,
		opts:   opts,
	}
}

// NewCommentatorFromClient creates a new Anthropic commentator from an existing client
func NewCommentatorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Commentator {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.4,
		MaxTokens:   320,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Commentator{
		client: client,
		opts:   opts,
	}
}

// Comment renders the prompt, calls the Messages API and normalizes the
// response text and usage figures.
func (c *Commentator) Comment(ctx context.Context, req commentary.Request) (*commentary.Commentary, error) {
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: commentary.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(commentary.BuildUserMessage(req))),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("anthropic returned no text content")
	}

	result := &commentary.Commentary{
		Model:      string(c.opts.Model),
		Text:       commentary.StripCodeFence(text),
		StopReason: string(resp.StopReason),
		Usage: &commentary.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
	return result, nil
}

// Info returns metadata describing this Anthropic commentator implementation.
func (c *Commentator) Info() commentary.Info {
	return commentary.Info{
		Name:     string(c.opts.Model),
		Provider: "anthropic",
	}
}
