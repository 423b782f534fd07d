package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Known dimensions for the OpenAI embedding models we support.
var openAIDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

const defaultOpenAIDimension = 1536

// ErrEmptyText is returned when text is empty
var ErrEmptyText = errors.New("text cannot be empty")

// OpenAIProvider generates embeddings through the OpenAI API.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	dimension int
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	dimension, ok := openAIDimensions[model]
	if !ok {
		dimension = defaultOpenAIDimension
	}
	return &OpenAIProvider{
		client:    openai.NewClient(apiKey),
		model:     model,
		dimension: dimension,
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != p.dimension {
		return nil, fmt.Errorf("embedding has wrong dimensions: expected %d, got %d", p.dimension, len(vec))
	}

	return vec, nil
}

func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// ValidateConnection embeds a short probe string to confirm the API key and
// model are usable.
func (p *OpenAIProvider) ValidateConnection(ctx context.Context) error {
	_, err := p.Embed(ctx, "ping")
	if err != nil {
		return fmt.Errorf("openai embedding validation failed: %w", err)
	}
	return nil
}
