package rag

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	passages := []Passage{
		{Text: "photosynthesis converts light into chemical energy.", Source: "bio.pdf", Page: 1},
		{Text: "chlorophyll absorbs red and blue light.", Source: "bio.pdf", Page: 2},
	}

	tests := []struct {
		name         string
		task         Task
		passages     []Passage
		payload      Payload
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:     "answer with context",
			task:     TaskAnswer,
			passages: passages,
			payload:  Payload{Question: "  What does chlorophyll absorb? "},
			wantContains: []string{
				"using only the information in the context",
				"photosynthesis converts light into chemical energy.\n\nchlorophyll absorbs red and blue light.",
				"Question: What does chlorophyll absorb?",
			},
			wantAbsent: []string{NoContextPlaceholder},
		},
		{
			name:    "answer without context",
			task:    TaskAnswer,
			payload: Payload{Question: "Anything?"},
			wantContains: []string{
				NoContextPlaceholder,
				"Question: Anything?",
			},
		},
		{
			name:     "generate questions",
			task:     TaskGenerateQuestions,
			passages: passages,
			wantContains: []string{
				"exactly 5 open-ended questions",
				"one question per line",
				"chlorophyll absorbs",
			},
			wantAbsent: []string{"Question:"},
		},
		{
			name: "generate questions without context",
			task: TaskGenerateQuestions,
			wantContains: []string{
				NoContextPlaceholder,
				"exactly 5 open-ended questions",
			},
		},
		{
			name:     "evaluate",
			task:     TaskEvaluate,
			passages: passages,
			payload: Payload{Responses: []QA{
				{Question: "What is photosynthesis?", Answer: "Turning light into energy"},
				{Question: "Q2", Answer: ""},
			}},
			wantContains: []string{
				"- What is photosynthesis?: Turning light into energy\n- Q2: \n",
				"structured training plan",
				"photosynthesis converts light",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPrompt(tt.task, tt.passages, tt.payload)
			if err != nil {
				t.Fatalf("BuildPrompt() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("BuildPrompt() missing %q in:\n%s", want, got)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("BuildPrompt() unexpectedly contains %q", absent)
				}
			}
		})
	}
}

func TestBuildPrompt_UnknownTask(t *testing.T) {
	if _, err := BuildPrompt(Task(42), nil, Payload{}); err == nil {
		t.Error("BuildPrompt() with unknown task should fail")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	passages := []Passage{{Text: "a"}, {Text: "b"}}
	first, _ := BuildPrompt(TaskAnswer, passages, Payload{Question: "q"})
	second, _ := BuildPrompt(TaskAnswer, passages, Payload{Question: "q"})
	if first != second {
		t.Error("BuildPrompt() is not deterministic")
	}
}

func TestTaskString(t *testing.T) {
	if TaskEvaluate.String() != "evaluate" {
		t.Errorf("TaskEvaluate.String() = %q", TaskEvaluate.String())
	}
	if Task(9).String() != "unknown" {
		t.Errorf("Task(9).String() = %q", Task(9).String())
	}
}
