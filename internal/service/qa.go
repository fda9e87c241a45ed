package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retriever.go -package=mocks pdfqa/internal/service Retriever
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks pdfqa/internal/service Generator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_qa_service.go -package=mocks -mock_names=QAService=MockQAService pdfqa/internal/service QAService

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/llm"
	"pdfqa/internal/rag"
)

// Fallback strings returned to callers in place of internal failures.
const (
	EmptyQuestionMessage    = "Please enter a question."
	NoAnswerMessage         = "No valid answer was obtained."
	LookupFailedMessage     = "Error while consulting the document."
	NoEvaluationMessage     = "No evaluation was generated."
	EvaluationFailedMessage = "Error while evaluating the user responses."
)

// DefaultRetrievalK is the number of passages retrieved per operation when none is configured.
const DefaultRetrievalK = 4

// Retriever finds the passages most relevant to a query.
// This interface is defined from the service layer's perspective (consumer-first).
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]rag.Passage, error)
}

// Generator produces completions for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params llm.ChatParams) ([]string, error)
}

// Responses is an ordered list of answered questions.
type Responses []rag.QA

// ResponsesFromMap converts a question to answer map into Responses sorted by question.
func ResponsesFromMap(m map[string]string) Responses {
	out := make(Responses, 0, len(m))
	for q, a := range m {
		out = append(out, rag.QA{Question: q, Answer: a})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Question < out[j].Question
	})
	return out
}

// QAService answers questions about the indexed documents.
// None of its operations return internal failures to the caller: they are logged and
// replaced by the fallback strings above.
type QAService interface {
	// AskQuestion answers query from the document context.
	AskQuestion(ctx context.Context, query string) string
	// GenerateGeneralQuestions returns up to five comprehension questions about the documents.
	// An empty result means no questions could be generated.
	GenerateGeneralQuestions(ctx context.Context) []string
	// EvaluateResponses assesses the user's answers and returns a training plan.
	// The only error it returns matches ErrInvalidInput.
	EvaluateResponses(ctx context.Context, responses Responses) (string, error)
}

// qaService implements QAService.
type qaService struct {
	retriever Retriever
	generator Generator
	params    llm.ChatParams
	k         int
}

// NewQAService creates a new QAService retrieving k passages per operation.
func NewQAService(retriever Retriever, generator Generator, params llm.ChatParams, k int) QAService {
	if k <= 0 {
		k = DefaultRetrievalK
	}
	return &qaService{
		retriever: retriever,
		generator: generator,
		params:    params,
		k:         k,
	}
}

func (s *qaService) AskQuestion(ctx context.Context, query string) string {
	ctx = contextutil.WithAttrs(ctx, "operation", "ask_question")
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		logger.WarnContext(ctx, "empty question")
		return EmptyQuestionMessage
	}

	answer, err := s.answer(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "question_length", len(query), "error", err)
		return LookupFailedMessage
	}
	if answer == "" {
		logger.WarnContext(ctx, "generation returned no answer")
		return NoAnswerMessage
	}

	logger.InfoContext(ctx, "question answered", "question_length", len(query), "answer_length", len(answer))
	return answer
}

func (s *qaService) answer(ctx context.Context, query string) (string, error) {
	passages, err := s.retriever.Retrieve(ctx, query, s.k)
	if err != nil {
		return "", WrapError(err, "failed to retrieve context")
	}

	prompt, err := rag.BuildPrompt(rag.TaskAnswer, passages, rag.Payload{Question: query})
	if err != nil {
		return "", err
	}

	return s.generateFirst(ctx, prompt)
}

func (s *qaService) GenerateGeneralQuestions(ctx context.Context) []string {
	ctx = contextutil.WithAttrs(ctx, "operation", "generate_questions")
	logger := contextutil.LoggerFromContext(ctx)

	questions, err := s.generateQuestions(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate questions", "error", err)
		return []string{}
	}

	logger.InfoContext(ctx, "questions generated", "count", len(questions))
	return questions
}

func (s *qaService) generateQuestions(ctx context.Context) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	passages, err := s.retriever.Retrieve(ctx, rag.TopicDiscoveryQuery, s.k)
	if err != nil {
		return nil, WrapError(err, "failed to retrieve topic context")
	}
	if len(passages) == 0 {
		logger.WarnContext(ctx, "no topic context available")
		return []string{}, nil
	}

	prompt, err := rag.BuildPrompt(rag.TaskGenerateQuestions, passages, rag.Payload{})
	if err != nil {
		return nil, err
	}

	output, err := s.generateFirst(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseQuestions(output), nil
}

// parseQuestions keeps the first non-blank lines of output, trimmed.
func parseQuestions(output string) []string {
	questions := make([]string, 0, rag.NumGeneratedQuestions)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == rag.NumGeneratedQuestions {
			break
		}
	}
	return questions
}

func (s *qaService) EvaluateResponses(ctx context.Context, responses Responses) (string, error) {
	ctx = contextutil.WithAttrs(ctx, "operation", "evaluate_responses")
	logger := contextutil.LoggerFromContext(ctx)

	if len(responses) == 0 {
		logger.WarnContext(ctx, "no responses to evaluate")
		return "", &ValidationError{
			Field:   "responses",
			Message: "cannot be empty",
		}
	}
	for i, qa := range responses {
		if strings.TrimSpace(qa.Question) == "" {
			return "", &ValidationError{
				Field:   fmt.Sprintf("responses[%d].question", i),
				Message: "cannot be empty",
			}
		}
	}

	plan, err := s.evaluate(ctx, responses)
	if err != nil {
		logger.ErrorContext(ctx, "failed to evaluate responses", "responses", len(responses), "error", err)
		return EvaluationFailedMessage, nil
	}
	if plan == "" {
		logger.WarnContext(ctx, "generation returned no evaluation")
		return NoEvaluationMessage, nil
	}

	logger.InfoContext(ctx, "responses evaluated", "responses", len(responses), "plan_length", len(plan))
	return plan, nil
}

func (s *qaService) evaluate(ctx context.Context, responses Responses) (string, error) {
	passages, err := s.retriever.Retrieve(ctx, rag.ValidationCriteriaQuery, s.k)
	if err != nil {
		return "", WrapError(err, "failed to retrieve validation context")
	}

	prompt, err := rag.BuildPrompt(rag.TaskEvaluate, passages, rag.Payload{Responses: responses})
	if err != nil {
		return "", err
	}

	return s.generateFirst(ctx, prompt)
}

// generateFirst returns the first completion trimmed, or "" when there is none.
func (s *qaService) generateFirst(ctx context.Context, prompt string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "sending prompt", "prompt_length", len(prompt))

	completions, err := s.generator.Generate(ctx, prompt, s.params)
	if err != nil {
		return "", WrapError(err, "failed to generate")
	}
	if len(completions) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completions[0]), nil
}
