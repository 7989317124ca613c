// Package embed adapts the OpenAI embeddings API to the fixed-dimension
// vector contract the index and retrieval engine consume.
package embed

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBatchSize bounds how many texts go into a single API call.
const DefaultBatchSize = 100

// AdapterError wraps a failed embeddings call. The core does not retry;
// the failure propagates to the caller.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("embeddings %s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// Client calls the OpenAI embeddings endpoint.
type Client struct {
	api       openai.Client
	model     string
	batchSize int
}

// NewClient builds an embeddings client for the given model. batchSize <= 0
// falls back to DefaultBatchSize.
func NewClient(apiKey, model string, batchSize int) *Client {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Client{
		api:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		batchSize: batchSize,
	}
}

// Model returns the embedding model identifier.
func (c *Client) Model() string { return c.model }

// BatchSize returns the maximum texts submitted per call.
func (c *Client) BatchSize() int { return c.batchSize }

// EmbedBatch returns one vector per input text, in input order. The caller
// is expected to keep len(texts) within BatchSize; larger inputs still work
// but are split into multiple calls.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// EmbedOne embeds a single query text.
func (c *Client) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, &AdapterError{Op: "create", Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &AdapterError{
			Op:  "create",
			Err: fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	// The API tags each embedding with its input index; place by index
	// rather than trusting response order.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(vectors) {
			return nil, &AdapterError{Op: "create", Err: fmt.Errorf("embedding index %d out of range", idx)}
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[idx] = vec
	}
	for i, v := range vectors {
		if v == nil {
			return nil, &AdapterError{Op: "create", Err: fmt.Errorf("missing embedding for input %d", i)}
		}
	}
	return vectors, nil
}
