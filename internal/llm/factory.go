package llm

import (
	"fmt"

	"pdfqa/internal/config"
)

// NewEmbedderFromConfig builds the configured embedding backend, paced by
// EMBEDDING_RATE_LIMIT and, when cache is non-nil, backed by the persistent cache.
func NewEmbedderFromConfig(cfg *config.Config, cache EmbeddingCache) (Embedder, error) {
	var base Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderHTTP:
		base = NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDimension)
	case config.ProviderOpenAI:
		base = NewOpenAIClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDimension)
	case config.ProviderOllama:
		c, err := NewOllamaClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModelName, cfg.EmbeddingDimension)
		if err != nil {
			return nil, err
		}
		base = c
	default:
		return nil, &config.ConfigError{Field: "EMBEDDING_PROVIDER", Message: fmt.Sprintf("unsupported provider %q", cfg.EmbeddingProvider)}
	}

	var e Embedder = NewRateLimitedEmbedder(base, cfg.EmbeddingRateLimit)
	if cache != nil {
		e = NewCachedEmbedder(e, cache, cfg.EmbeddingModelName)
	}
	return e, nil
}

// NewGeneratorFromConfig builds the configured text-generation backend.
func NewGeneratorFromConfig(cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderHTTP:
		return NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, 0), nil
	case config.ProviderOllama:
		c, err := NewOllamaClient(cfg.LLMBaseURL, cfg.LLMModelName, 0)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, &config.ConfigError{Field: "LLM_PROVIDER", Message: fmt.Sprintf("unsupported provider %q", cfg.LLMProvider)}
	}
}

// ChatParamsFromConfig returns the generation parameters configured for every request.
func ChatParamsFromConfig(cfg *config.Config) ChatParams {
	return ChatParams{
		Model:       cfg.LLMModelName,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: float32(cfg.LLMTemperature),
	}
}
