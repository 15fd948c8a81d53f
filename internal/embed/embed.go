// Package embed generates vector embeddings for post text. The embedding
// call is opaque to the rest of the pipeline: text in, vector out, or an
// error the caller treats as non-fatal.
package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the embedding model used for post text.
const DefaultModel = "text-embedding-004"

// Dimensions is the fixed output dimensionality of DefaultModel.
const Dimensions = 768

// MaxChunkSize caps the characters sent in one embedding call. Longer post
// text is chunked on word boundaries and the first chunk's vector is used.
const MaxChunkSize = 8000

// Embedder is the vector-generation contract consumed by the store path.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// Client generates embeddings through the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates an embedding client. The API key is required.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	return &Client{client: client, model: DefaultModel}, nil
}

// EmbedText returns the embedding vector for the given text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	chunks := ChunkText(text, MaxChunkSize)

	em := c.client.EmbeddingModel(c.model)
	res, err := em.EmbedContent(ctx, genai.Text(chunks[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response contained no values")
	}

	return res.Embedding.Values, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ChunkText splits text into chunks of at most maxChunkSize characters,
// breaking on word boundaries.
func ChunkText(text string, maxChunkSize int) []string {
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := len(word) + 1
		if currentLen+wordLen > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{word}
			currentLen = wordLen
		} else {
			current = append(current, word)
			currentLen += wordLen
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
