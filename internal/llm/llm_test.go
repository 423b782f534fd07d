package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankborjam/sebastian/internal/config"
)

func localConfig() *config.Config {
	return &config.Config{
		Mode:          config.ModeLocal,
		OllamaBaseURL: "http://localhost:11434",
		LocalLLMModel: "llama3.2:3b",
	}
}

func TestNewGenerator_ModeSelection(t *testing.T) {
	g, err := NewGenerator(localConfig())
	require.NoError(t, err)
	assert.IsType(t, &OllamaGenerator{}, g)
	assert.Equal(t, "llama3.2:3b", g.ModelName())

	cloud := localConfig()
	cloud.Mode = config.ModeCloud
	cloud.OpenAIAPIKey = "sk-test"
	cloud.CloudLLMModel = "gpt-4o-mini"
	g, err = NewGenerator(cloud)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, g)
	assert.Equal(t, "gpt-4o-mini", g.ModelName())
}

func TestNewGenerator_CloudRequiresKey(t *testing.T) {
	cfg := localConfig()
	cfg.Mode = config.ModeCloud

	_, err := NewGenerator(cfg)
	assert.Error(t, err)
}

func TestCache_ReturnsSameInstance(t *testing.T) {
	cache := NewCache(localConfig())

	first, err := cache.Get()
	require.NoError(t, err)
	second, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)

	cache.Invalidate()
	third, err := cache.Get()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
