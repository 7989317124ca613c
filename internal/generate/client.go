// Package generate is the external answer-synthesis collaborator: it turns
// retrieved sources into a cited answer or an alignment analysis. No
// retrieval logic lives here.
package generate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/regdocs/regrag/internal/retrieve"
)

// AdapterError wraps a failed generation call.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// Client calls the chat completions endpoint.
type Client struct {
	api   openai.Client
	model string
}

// NewClient builds a generation client for the given chat model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		api:   openai.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}
}

// Model returns the chat model identifier.
func (c *Client) Model() string { return c.model }

// Answer synthesizes a cited answer to the question from the given sources.
func (c *Client) Answer(ctx context.Context, question string, sources []retrieve.Result) (string, error) {
	return c.complete(ctx, "answer", answerSystemPrompt, answerUserPrompt(question, sources))
}

// AlignmentAnalysis compares module-side and core-side sources for the query
// and reports agreements, contradictions and authoritative statements.
func (c *Client) AlignmentAnalysis(ctx context.Context, query string, moduleSide, coreSide []retrieve.Result) (string, error) {
	return c.complete(ctx, "alignment", alignmentSystemPrompt, alignmentUserPrompt(query, moduleSide, coreSide))
}

func (c *Client) complete(ctx context.Context, op, system, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", &AdapterError{Op: op, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &AdapterError{Op: op, Err: fmt.Errorf("empty completion response")}
	}
	return resp.Choices[0].Message.Content, nil
}
