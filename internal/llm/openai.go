package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient serves embeddings and chat completions through the go-openai SDK.
// Any OpenAI-compatible endpoint works by overriding the base URL.
type OpenAIClient struct {
	client       *openai.Client
	model        string
	expectedSize int
}

// NewOpenAIClient creates a client. baseURL may be empty to use api.openai.com.
// expectedSize is only checked by EmbedTexts; pass 0 for a generation-only client.
func NewOpenAIClient(baseURL, apiKey, model string, expectedSize int) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		expectedSize: expectedSize,
	}
}

// EmbedTexts generates embeddings for texts. Every failure wraps ErrEmbeddingUnavailable.
func (c *OpenAIClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmtUnavailable("empty input array")
	}

	rsp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	if len(rsp.Data) != len(texts) {
		return nil, fmtUnavailable("expected %d embeddings, got %d", len(texts), len(rsp.Data))
	}

	result := make([][]float32, len(texts))
	for _, d := range rsp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmtUnavailable("embedding index %d out of range", d.Index)
		}
		if c.expectedSize > 0 && len(d.Embedding) != c.expectedSize {
			return nil, fmtUnavailable("embedding %d has size %d, expected %d", d.Index, len(d.Embedding), c.expectedSize)
		}
		result[d.Index] = d.Embedding
	}
	for i, vec := range result {
		if vec == nil {
			return nil, fmtUnavailable("missing embedding %d", i)
		}
	}

	return result, nil
}

// EmbedText generates the embedding of a single text.
func (c *OpenAIClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return EmbedOne(ctx, c, text)
}

// Generate sends prompt as a single user message and returns the content of every choice.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, params ChatParams) ([]string, error) {
	model := params.Model
	if model == "" {
		model = c.model
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	rsp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, wrapGeneration(fmt.Errorf("chat completion: %w", err))
	}

	completions := make([]string, 0, len(rsp.Choices))
	for _, choice := range rsp.Choices {
		completions = append(completions, choice.Message.Content)
	}
	return completions, nil
}
