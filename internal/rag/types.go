package rag

// Passage is a retrieved chunk of document text with its origin.
type Passage struct {
	// Text is the normalized chunk text.
	Text string `json:"text"`
	// Source is the corpus-relative path of the originating file.
	Source string `json:"source"`
	// Page is the 1-based page within Source.
	Page int `json:"page"`
	// Score is the cosine similarity to the query (higher is closer).
	Score float32 `json:"score"`
}

// Task selects the instruction a prompt is built for.
type Task int

const (
	// TaskAnswer answers a user question from the retrieved context only.
	TaskAnswer Task = iota
	// TaskGenerateQuestions asks for five open-ended comprehension questions.
	TaskGenerateQuestions
	// TaskEvaluate assesses user answers and asks for a training plan.
	TaskEvaluate
)

func (t Task) String() string {
	switch t {
	case TaskAnswer:
		return "answer"
	case TaskGenerateQuestions:
		return "generate_questions"
	case TaskEvaluate:
		return "evaluate"
	default:
		return "unknown"
	}
}

// QA is one question with the user's answer to it.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Payload carries the task-specific input of a prompt.
type Payload struct {
	// Question is the user question for TaskAnswer.
	Question string
	// Responses are the answered questions for TaskEvaluate, in display order.
	Responses []QA
}
