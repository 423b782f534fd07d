// Package embedding maps text to fixed-dimension vectors behind a provider
// interface with interchangeable local (Ollama) and cloud (OpenAI) backends.
package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/bankborjam/sebastian/internal/config"
)

// Provider generates embeddings for text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelName() string
	ValidateConnection(ctx context.Context) error
}

// NewProvider constructs the provider selected by cfg.Mode.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Mode {
	case config.ModeCloud:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY required for cloud embeddings")
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel), nil
	case config.ModeLocal:
		return NewOllamaProvider(cfg.OllamaBaseURL, cfg.LocalEmbeddingModel, cfg.LocalEmbeddingDim), nil
	default:
		return nil, fmt.Errorf("unknown embedding mode: %s", cfg.Mode)
	}
}

// Cache lazily constructs a single shared Provider and hands out the same
// instance across concurrent requests. Invalidate drops the instance so the
// next Get rebuilds it (used after reconfiguration or an index rebuild).
type Cache struct {
	cfg *config.Config

	mu       sync.Mutex
	provider Provider
}

func NewCache(cfg *config.Config) *Cache {
	return &Cache{cfg: cfg}
}

func (c *Cache) Get() (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil {
		return c.provider, nil
	}
	provider, err := NewProvider(c.cfg)
	if err != nil {
		return nil, err
	}
	c.provider = provider
	return provider, nil
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = nil
}
