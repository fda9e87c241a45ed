package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported backend identifiers.
const (
	BackendLocal    = "local"
	BackendQdrant   = "qdrant"
	BackendPgvector = "pgvector"

	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all configuration for the application.
type Config struct {
	DataDir            string
	VectorStoreDir     string
	VectorStoreBackend string
	Collection         string
	QdrantURL          string
	PgvectorURL        string

	ChunkSize    int
	ChunkOverlap int
	RetrievalK   int

	EmbeddingProvider  string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingDimension int
	EmbeddingBatchSize int
	EmbeddingRateLimit float64

	LLMProvider    string
	LLMBaseURL     string
	LLMModelName   string
	LLMAPIKey      string
	LLMTemperature float64
	LLMMaxTokens   int

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the result.
// If a .env file exists in the current directory or one of its parents, it is loaded first;
// variables already present in the environment take precedence over .env values.
// Every validation failure is reported as a *ConfigError.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		DataDir:            dataDir,
		VectorStoreDir:     getEnv("VECTORSTORE_DIR", filepath.Join(dataDir, "vectorstore")),
		VectorStoreBackend: strings.ToLower(getEnv("VECTORSTORE_BACKEND", BackendLocal)),
		Collection:         getEnv("COLLECTION", "documents"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		PgvectorURL:        getEnv("PGVECTOR_URL", ""),
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderHTTP)),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081/v1"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "sentence-transformers/all-mpnet-base-v2"),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderHTTP)),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://router.huggingface.co/v1"),
		LLMModelName:       getEnv("LLM_MODEL", "mistralai/Mistral-7B-Instruct-v0.3"),
		LLMAPIKey:          getEnv("HUGGINGFACEHUB_API_TOKEN", os.Getenv("LLM_API_KEY")),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.ChunkSize, err = getInt("CHUNK_SIZE", 500); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getInt("CHUNK_OVERLAP", 20); err != nil {
		return nil, err
	}
	if cfg.RetrievalK, err = getInt("RETRIEVAL_K", 4); err != nil {
		return nil, err
	}
	// Must match the output size of the embedding model. all-mpnet-base-v2 produces 768 dimensions.
	if cfg.EmbeddingDimension, err = getInt("EMBEDDING_DIMENSION", 768); err != nil {
		return nil, err
	}
	if cfg.EmbeddingBatchSize, err = getInt("EMBEDDING_BATCH_SIZE", 32); err != nil {
		return nil, err
	}
	if cfg.EmbeddingRateLimit, err = getFloat("EMBEDDING_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.LLMTemperature, err = getFloat("LLM_TEMPERATURE", 0.3); err != nil {
		return nil, err
	}
	if cfg.LLMMaxTokens, err = getInt("LLM_MAX_TOKENS", 512); err != nil {
		return nil, err
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.VectorStoreDir, 0755); err != nil {
		return nil, &ConfigError{Field: "VECTORSTORE_DIR", Message: fmt.Sprintf("failed to create directory: %v", err)}
	}

	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot start with.
// It returns the first problem found as a *ConfigError.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return &ConfigError{Field: "CHUNK_SIZE", Message: "must be greater than 0"}
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return &ConfigError{Field: "CHUNK_OVERLAP", Message: "must be non-negative and less than CHUNK_SIZE"}
	}
	if c.RetrievalK <= 0 {
		return &ConfigError{Field: "RETRIEVAL_K", Message: "must be greater than 0"}
	}
	if c.EmbeddingDimension <= 0 {
		return &ConfigError{Field: "EMBEDDING_DIMENSION", Message: "must be greater than 0"}
	}
	if c.EmbeddingBatchSize <= 0 {
		return &ConfigError{Field: "EMBEDDING_BATCH_SIZE", Message: "must be greater than 0"}
	}
	if c.EmbeddingRateLimit < 0 {
		return &ConfigError{Field: "EMBEDDING_RATE_LIMIT", Message: "must not be negative"}
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return &ConfigError{Field: "LLM_TEMPERATURE", Message: "must be between 0 and 2"}
	}
	if c.LLMMaxTokens < 0 {
		return &ConfigError{Field: "LLM_MAX_TOKENS", Message: "must not be negative"}
	}

	switch c.VectorStoreBackend {
	case BackendLocal, BackendQdrant:
	case BackendPgvector:
		if c.PgvectorURL == "" {
			return &ConfigError{Field: "PGVECTOR_URL", Message: "is required when VECTORSTORE_BACKEND=pgvector"}
		}
	default:
		return &ConfigError{Field: "VECTORSTORE_BACKEND", Message: fmt.Sprintf("unsupported backend %q", c.VectorStoreBackend)}
	}

	providers := []struct{ field, value string }{
		{"EMBEDDING_PROVIDER", c.EmbeddingProvider},
		{"LLM_PROVIDER", c.LLMProvider},
	}
	for _, p := range providers {
		switch p.value {
		case ProviderHTTP, ProviderOpenAI, ProviderOllama:
		default:
			return &ConfigError{Field: p.field, Message: fmt.Sprintf("unsupported provider %q", p.value)}
		}
	}

	// Hosted generation backends cannot serve a single request without a credential,
	// so a missing token is a startup failure rather than a per-request one.
	if c.LLMProvider != ProviderOllama && c.LLMAPIKey == "" {
		return &ConfigError{Field: "HUGGINGFACEHUB_API_TOKEN", Message: "is required"}
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return &ConfigError{Field: "LOG_FORMAT", Message: "must be text or json"}
	}

	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a valid integer", Err: err}
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a valid number", Err: err}
	}
	return v, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, &ConfigError{Field: "LOG_LEVEL", Message: "must be debug, info, warn or error", Err: err}
	}
	return level, nil
}
