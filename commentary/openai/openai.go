// Package openai provides a commentary adapter using the OpenAI Chat
// Completions API. It renders the normalized commentary prompt into the SDK's
// message format and maps the completion back.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/enginemesh/commentary"
)

// Options configure the OpenAI commentary adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Commentator wraps the OpenAI Chat Completions API behind the generic
// commentary.Commentator interface.
type Commentator struct {
	client *openai.Client
	opts   Options
}

// NewCommentator creates a new OpenAI commentator using the official client
func NewCommentator(optFns ...func(o *Options)) *Commentator {
	client := openai.NewClient()
	return NewCommentatorFromClient(&client, optFns...)
}

// NewCommentatorFromClient creates a new OpenAI commentator from an existing client
func NewCommentatorFromClient(client *openai.Client, optFns ...func(o *Options)) *Commentator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.4,
		MaxCompletionTokens: 320,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Commentator{client: client, opts: opts}
}

// Comment renders the prompt, calls the Chat Completions API and normalizes
// the completion text and usage figures.
func (c *Commentator) Comment(ctx context.Context, req commentary.Request) (*commentary.Commentary, error) {
	params := openai.ChatCompletionNewParams{
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(commentary.SystemPrompt),
			openai.UserMessage(commentary.BuildUserMessage(req)),
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return nil, fmt.Errorf("openai returned no text content")
	}

	result := &commentary.Commentary{
		Model:      c.opts.Model,
		Text:       commentary.StripCodeFence(choice.Message.Content),
		StopReason: string(choice.FinishReason),
		Usage: &commentary.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	return result, nil
}

// Info returns metadata describing this OpenAI commentator implementation.
func (c *Commentator) Info() commentary.Info {
	return commentary.Info{
		Name:     c.opts.Model,
		Provider: "openai",
	}
}
