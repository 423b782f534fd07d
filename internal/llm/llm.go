// Package llm abstracts answer generation behind a Generator interface with
// interchangeable local (Ollama) and cloud (OpenAI) backends.
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/bankborjam/sebastian/internal/config"
)

// Generation tuning shared by both backends; low temperature keeps answers
// close to the supplied context.
const (
	generationTemperature = 0.3
	generationMaxTokens   = 800
)

// Generator produces text from a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
	ValidateConnection(ctx context.Context) error
}

// NewGenerator constructs the generator selected by cfg.Mode.
func NewGenerator(cfg *config.Config) (Generator, error) {
	switch cfg.Mode {
	case config.ModeCloud:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY required for cloud LLM")
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.CloudLLMModel), nil
	case config.ModeLocal:
		return NewOllamaGenerator(cfg.OllamaBaseURL, cfg.LocalLLMModel), nil
	default:
		return nil, fmt.Errorf("unknown llm mode: %s", cfg.Mode)
	}
}

// Cache lazily constructs a single shared Generator, safe for concurrent
// first use. Invalidate drops the instance so the next Get rebuilds it.
type Cache struct {
	cfg *config.Config

	mu        sync.Mutex
	generator Generator
}

func NewCache(cfg *config.Config) *Cache {
	return &Cache{cfg: cfg}
}

func (c *Cache) Get() (Generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generator != nil {
		return c.generator, nil
	}
	generator, err := NewGenerator(c.cfg)
	if err != nil {
		return nil, err
	}
	c.generator = generator
	return generator, nil
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generator = nil
}
