package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"pdfqa/internal/llm"
	"pdfqa/internal/rag"
	"pdfqa/internal/service"
	"pdfqa/internal/service/mocks"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testContext() context.Context {
	return context.Background()
}

var testParams = llm.ChatParams{Temperature: 0.3, MaxTokens: 256}

func passages(texts ...string) []rag.Passage {
	out := make([]rag.Passage, 0, len(texts))
	for _, t := range texts {
		out = append(out, rag.Passage{Text: t, Source: "doc.pdf", Page: 1})
	}
	return out
}

func TestQAService_AskQuestion(t *testing.T) {
	embeddingDown := fmt.Errorf("%w: dial tcp: connection refused", llm.ErrEmbeddingUnavailable)

	tests := []struct {
		name      string
		query     string
		mockSetup func(r *mocks.MockRetriever, g *mocks.MockGenerator)
		want      string
	}{
		{
			name:  "answer from context",
			query: "What is photosynthesis?",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), "What is photosynthesis?", 4).
					Return(passages("photosynthesis converts light into energy."), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), testParams).
					DoAndReturn(func(_ context.Context, prompt string, _ llm.ChatParams) ([]string, error) {
						if !strings.Contains(prompt, "photosynthesis converts light") {
							t.Errorf("prompt missing context: %s", prompt)
						}
						return []string{"  It converts light into energy.\n", "ignored"}, nil
					})
			},
			want: "It converts light into energy.",
		},
		{
			name:  "empty index still answers",
			query: "Unrelated?",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), "Unrelated?", 4).Return([]rag.Passage{}, nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), testParams).
					DoAndReturn(func(_ context.Context, prompt string, _ llm.ChatParams) ([]string, error) {
						if !strings.Contains(prompt, rag.NoContextPlaceholder) {
							t.Errorf("prompt missing placeholder: %s", prompt)
						}
						return []string{"The document does not say."}, nil
					})
			},
			want: "The document does not say.",
		},
		{
			name:  "no generations",
			query: "Q?",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), "Q?", 4).Return(passages("x"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{}, nil)
			},
			want: service.NoAnswerMessage,
		},
		{
			name:  "blank generation",
			query: "Q?",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), "Q?", 4).Return(passages("x"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{"   \n"}, nil)
			},
			want: service.NoAnswerMessage,
		},
		{
			name:  "embedding backend unreachable",
			query: "Q?",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), "Q?", 4).Return(nil, embeddingDown)
			},
			want: service.LookupFailedMessage,
		},
		{
			name:  "generation failure",
			query: "Q?",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), "Q?", 4).Return(passages("x"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: status 503", llm.ErrGenerationFailure))
			},
			want: service.LookupFailedMessage,
		},
		{
			name:      "blank question",
			query:     "   ",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {},
			want:      service.EmptyQuestionMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			retriever := mocks.NewMockRetriever(ctrl)
			generator := mocks.NewMockGenerator(ctrl)
			tt.mockSetup(retriever, generator)

			svc := service.NewQAService(retriever, generator, testParams, 4)
			if got := svc.AskQuestion(testContext(), tt.query); got != tt.want {
				t.Errorf("AskQuestion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQAService_GenerateGeneralQuestions(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(r *mocks.MockRetriever, g *mocks.MockGenerator)
		want      []string
	}{
		{
			name: "seven lines truncated to five",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), rag.TopicDiscoveryQuery, 4).Return(passages("topics"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), testParams).
					Return([]string{"Q1?\n\n  Q2?  \nQ3?\n   \nQ4?\nQ5?\nQ6?\nQ7?"}, nil)
			},
			want: []string{"Q1?", "Q2?", "Q3?", "Q4?", "Q5?"},
		},
		{
			name: "fewer lines than five",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), rag.TopicDiscoveryQuery, 4).Return(passages("topics"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{"Only one?"}, nil)
			},
			want: []string{"Only one?"},
		},
		{
			name: "no generations",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), rag.TopicDiscoveryQuery, 4).Return(passages("topics"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			want: []string{},
		},
		{
			name: "empty retrieval skips generation",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), rag.TopicDiscoveryQuery, 4).Return(nil, nil)
			},
			want: []string{},
		},
		{
			name: "retrieval failure",
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, llm.ErrEmbeddingUnavailable)
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			retriever := mocks.NewMockRetriever(ctrl)
			generator := mocks.NewMockGenerator(ctrl)
			tt.mockSetup(retriever, generator)

			svc := service.NewQAService(retriever, generator, testParams, 4)
			got := svc.GenerateGeneralQuestions(testContext())
			if got == nil {
				t.Fatal("GenerateGeneralQuestions() returned nil, want empty slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GenerateGeneralQuestions() = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("GenerateGeneralQuestions()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQAService_EvaluateResponses(t *testing.T) {
	tests := []struct {
		name         string
		responses    service.Responses
		mockSetup    func(r *mocks.MockRetriever, g *mocks.MockGenerator)
		want         string
		wantErr      bool
		checkErrType func(error) bool
	}{
		{
			name:      "empty responses",
			responses: service.Responses{},
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {},
			wantErr:   true,
			checkErrType: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.Is(err, service.ErrInvalidInput) &&
					errors.As(err, &validationErr) && validationErr.Field == "responses"
			},
		},
		{
			name:      "blank question",
			responses: service.Responses{{Question: " ", Answer: "A1"}},
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {},
			wantErr:   true,
			checkErrType: func(err error) bool {
				return errors.Is(err, service.ErrInvalidInput)
			},
		},
		{
			name:      "plan generated",
			responses: service.Responses{{Question: "Q1", Answer: "A1"}},
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), rag.ValidationCriteriaQuery, 4).Return(passages("criteria"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), testParams).
					DoAndReturn(func(_ context.Context, prompt string, _ llm.ChatParams) ([]string, error) {
						if !strings.Contains(prompt, "- Q1: A1") {
							t.Errorf("prompt missing formatted response: %s", prompt)
						}
						return []string{"\nReview chapter 2.\n"}, nil
					})
			},
			want: "Review chapter 2.",
		},
		{
			name:      "empty criteria context still evaluates",
			responses: service.Responses{{Question: "Q1", Answer: ""}},
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), rag.ValidationCriteriaQuery, 4).Return(nil, nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{"Plan"}, nil)
			},
			want: "Plan",
		},
		{
			name:      "no generations",
			responses: service.Responses{{Question: "Q1", Answer: "A1"}},
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(passages("criteria"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{}, nil)
			},
			want: service.NoEvaluationMessage,
		},
		{
			name:      "generation failure",
			responses: service.Responses{{Question: "Q1", Answer: "A1"}},
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(passages("criteria"), nil)
				g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, llm.ErrGenerationFailure)
			},
			want: service.EvaluationFailedMessage,
		},
		{
			name:      "retrieval failure",
			responses: service.Responses{{Question: "Q1", Answer: "A1"}},
			mockSetup: func(r *mocks.MockRetriever, g *mocks.MockGenerator) {
				r.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, llm.ErrEmbeddingUnavailable)
			},
			want: service.EvaluationFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			retriever := mocks.NewMockRetriever(ctrl)
			generator := mocks.NewMockGenerator(ctrl)
			tt.mockSetup(retriever, generator)

			svc := service.NewQAService(retriever, generator, testParams, 4)
			got, err := svc.EvaluateResponses(testContext(), tt.responses)

			if tt.wantErr {
				if err == nil {
					t.Fatal("EvaluateResponses() expected error, got nil")
				}
				if tt.checkErrType != nil && !tt.checkErrType(err) {
					t.Errorf("EvaluateResponses() error type check failed: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EvaluateResponses() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateResponses() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQAService_FallbackMessagesDistinct(t *testing.T) {
	if service.LookupFailedMessage == service.EvaluationFailedMessage {
		t.Error("lookup and evaluation failures must be distinguishable")
	}
}

func TestNewQAService_DefaultK(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	retriever := mocks.NewMockRetriever(ctrl)
	generator := mocks.NewMockGenerator(ctrl)
	retriever.EXPECT().Retrieve(gomock.Any(), "q", service.DefaultRetrievalK).Return(nil, nil)
	generator.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{"a"}, nil)

	svc := service.NewQAService(retriever, generator, testParams, 0)
	if got := svc.AskQuestion(testContext(), "q"); got != "a" {
		t.Errorf("AskQuestion() = %q, want a", got)
	}
}

func TestResponsesFromMap(t *testing.T) {
	got := service.ResponsesFromMap(map[string]string{
		"b question": "B",
		"a question": "A",
		"c question": "",
	})
	if len(got) != 3 {
		t.Fatalf("ResponsesFromMap() len = %d, want 3", len(got))
	}
	wantOrder := []string{"a question", "b question", "c question"}
	for i, q := range wantOrder {
		if got[i].Question != q {
			t.Errorf("ResponsesFromMap()[%d].Question = %q, want %q", i, got[i].Question, q)
		}
	}
	if got[0].Answer != "A" {
		t.Errorf("ResponsesFromMap()[0].Answer = %q, want A", got[0].Answer)
	}
}
