package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Provider modes selecting the embedding/LLM backends.
const (
	ModeLocal = "local"
	ModeCloud = "cloud"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Mode selects local (Ollama) or cloud (OpenAI) providers.
	Mode string `envconfig:"MODE" default:"local"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	DocsPath           string `envconfig:"DOCS_PATH" default:"./docs"`
	InteractionLogPath string `envconfig:"INTERACTION_LOG_PATH" default:"./logs/conversations.jsonl"`

	OllamaBaseURL       string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	LocalEmbeddingModel string `envconfig:"LOCAL_EMBEDDING_MODEL" default:"nomic-embed-text"`
	LocalEmbeddingDim   int    `envconfig:"LOCAL_EMBEDDING_DIM" default:"768"`
	LocalLLMModel       string `envconfig:"LOCAL_LLM_MODEL" default:"llama3.2:3b"`

	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIEmbeddingModel string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	CloudLLMModel        string `envconfig:"CLOUD_LLM_MODEL" default:"gpt-4o-mini"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"800"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"120"`

	RetrieverK      int     `envconfig:"RETRIEVER_K" default:"5"`
	RetrieverFetchK int     `envconfig:"RETRIEVER_FETCH_K" default:"20"`
	LambdaMult      float64 `envconfig:"LAMBDA_MULT" default:"0.7"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SEBASTIAN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate enforces the configuration invariants. Violations are fatal at
// startup and never surface mid-request.
func (c *Config) Validate() error {
	if c.Mode != ModeLocal && c.Mode != ModeCloud {
		return fmt.Errorf("invalid mode %q: must be %q or %q", c.Mode, ModeLocal, ModeCloud)
	}
	if c.Mode == ModeCloud && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when mode is %q", ModeCloud)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap cannot be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be strictly less than chunk size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.RetrieverK < 1 {
		return fmt.Errorf("retriever k must be at least 1, got %d", c.RetrieverK)
	}
	if c.RetrieverFetchK < c.RetrieverK {
		return fmt.Errorf("retriever fetch_k (%d) must be at least k (%d)", c.RetrieverFetchK, c.RetrieverK)
	}
	if c.LambdaMult < 0 || c.LambdaMult > 1 {
		return fmt.Errorf("lambda_mult must be in [0,1], got %g", c.LambdaMult)
	}
	return nil
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// EmbeddingModel returns the model name for the configured mode.
func (c *Config) EmbeddingModel() string {
	if c.Mode == ModeCloud {
		return c.OpenAIEmbeddingModel
	}
	return c.LocalEmbeddingModel
}

// LLMModel returns the generation model name for the configured mode.
func (c *Config) LLMModel() string {
	if c.Mode == ModeCloud {
		return c.CloudLLMModel
	}
	return c.LocalLLMModel
}
