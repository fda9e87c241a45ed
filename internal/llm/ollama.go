package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaClient serves embeddings and generations from a local Ollama server via langchaingo.
type OllamaClient struct {
	llm          *ollama.LLM
	model        string
	expectedSize int
}

// NewOllamaClient creates a client for model on the Ollama server at baseURL.
func NewOllamaClient(baseURL, model string, expectedSize int) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}

	return &OllamaClient{
		llm:          llm,
		model:        model,
		expectedSize: expectedSize,
	}, nil
}

// EmbedTexts generates embeddings for texts. Every failure wraps ErrEmbeddingUnavailable.
func (c *OllamaClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmtUnavailable("empty input array")
	}

	vecs, err := c.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	if len(vecs) != len(texts) {
		return nil, fmtUnavailable("expected %d embeddings, got %d", len(texts), len(vecs))
	}
	for i, vec := range vecs {
		if c.expectedSize > 0 && len(vec) != c.expectedSize {
			return nil, fmtUnavailable("embedding %d has size %d, expected %d", i, len(vec), c.expectedSize)
		}
	}

	return vecs, nil
}

// EmbedText generates the embedding of a single text.
func (c *OllamaClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return EmbedOne(ctx, c, text)
}

// Generate runs prompt through the model and returns every choice's content.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, params ChatParams) ([]string, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(float64(params.Temperature)),
	}
	if params.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(params.MaxTokens))
	}
	if params.Model != "" {
		opts = append(opts, llms.WithModel(params.Model))
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	rsp, err := c.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, wrapGeneration(fmt.Errorf("generate content: %w", err))
	}
	if rsp == nil {
		return nil, nil
	}

	completions := make([]string, 0, len(rsp.Choices))
	for _, choice := range rsp.Choices {
		if choice == nil {
			continue
		}
		completions = append(completions, choice.Content)
	}
	return completions, nil
}
