package rag

import (
	"fmt"
	"strings"
)

// NoContextPlaceholder stands in for the context block when retrieval found nothing.
const NoContextPlaceholder = "(no relevant context found)"

// NumGeneratedQuestions is how many questions TaskGenerateQuestions asks for.
const NumGeneratedQuestions = 5

// BuildPrompt formats passages and payload into a single prompt for task.
// An empty passage list still yields a complete prompt.
func BuildPrompt(task Task, passages []Passage, payload Payload) (string, error) {
	ctxBlock := formatContext(passages)

	var b strings.Builder
	switch task {
	case TaskAnswer:
		b.WriteString("Answer the question using only the information in the context below. ")
		b.WriteString("If the context does not contain the answer, say that the document does not provide this information.\n\n")
		writeContext(&b, ctxBlock)
		fmt.Fprintf(&b, "Question: %s\n\nAnswer:", strings.TrimSpace(payload.Question))

	case TaskGenerateQuestions:
		b.WriteString("Here are the main topics covered in a document.\n\n")
		writeContext(&b, ctxBlock)
		fmt.Fprintf(&b, "Write exactly %d open-ended questions that test comprehension of the document. ", NumGeneratedQuestions)
		b.WriteString("Write one question per line, without numbering, bullets or any other text.")

	case TaskEvaluate:
		b.WriteString("Using the following reference material, evaluate the user's answers to the questions below.\n\n")
		writeContext(&b, ctxBlock)
		b.WriteString("--- User answers ---\n")
		for _, qa := range payload.Responses {
			fmt.Fprintf(&b, "- %s: %s\n", strings.TrimSpace(qa.Question), strings.TrimSpace(qa.Answer))
		}
		b.WriteString("--- End user answers ---\n\n")
		b.WriteString("Assess each answer against the reference material, point out what is missing or wrong, ")
		b.WriteString("then propose a structured training plan to close the gaps.")

	default:
		return "", fmt.Errorf("unknown prompt task %d", int(task))
	}

	return b.String(), nil
}

func formatContext(passages []Passage) string {
	if len(passages) == 0 {
		return NoContextPlaceholder
	}
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n\n")
}

func writeContext(b *strings.Builder, ctxBlock string) {
	b.WriteString("--- Context ---\n")
	b.WriteString(ctxBlock)
	b.WriteString("\n--- End Context ---\n\n")
}
