package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pdfqa/internal/rag"
	"pdfqa/internal/service"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run an interactive three-level session",
	Long: `Level 1 answers a question of yours about the documents.
Level 2 generates general comprehension questions.
Level 3 collects your answers to them and proposes a training plan.`,
	Args: cobra.NoArgs,
	RunE: runQuizCmd,
}

func init() {
	rootCmd.AddCommand(quizCmd)
}

func runQuizCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openIndexedApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	return runQuiz(ctx, a.QA, cmd.InOrStdin(), cmd.OutOrStdout())
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
)

func runQuiz(ctx context.Context, qa service.QAService, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	heading.Fprintln(out, "=== Level 1: Ask the document ===")
	query, err := readLine(reader, out, "Your question about the document: ")
	if err != nil {
		return err
	}
	label.Fprint(out, "Answer: ")
	fmt.Fprintln(out, qa.AskQuestion(ctx, query))

	fmt.Fprintln(out)
	heading.Fprintln(out, "=== Level 2: General questions ===")
	questions := qa.GenerateGeneralQuestions(ctx)
	if len(questions) == 0 {
		warning.Fprintln(out, "No questions were generated.")
		warning.Fprintln(out, "Level 3 needs the questions from level 2; stopping here.")
		return nil
	}
	label.Fprintln(out, "Generated questions:")
	for i, q := range questions {
		fmt.Fprintf(out, "%d. %s\n", i+1, q)
	}

	fmt.Fprintln(out)
	heading.Fprintln(out, "=== Level 3: Evaluate your answers ===")
	responses := make(service.Responses, 0, len(questions))
	for _, q := range questions {
		fmt.Fprintln(out, q)
		answer, err := readLine(reader, out, "Your answer: ")
		if err != nil {
			return err
		}
		responses = append(responses, rag.QA{Question: q, Answer: answer})
	}

	plan, err := qa.EvaluateResponses(ctx, responses)
	if errors.Is(err, service.ErrInvalidInput) {
		warning.Fprintln(out, "No user answers to evaluate.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	label.Fprintln(out, "Suggested training plan:")
	fmt.Fprintln(out, plan)
	return nil
}

// readLine prints prompt and returns the next input line without its line ending.
// End of input yields whatever was typed so far.
func readLine(r *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(out)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
