package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pdfqa/internal/app"
	"pdfqa/internal/config"
)

var (
	cfg     *config.Config
	verbose bool

	// loadConfig is replaced in tests.
	loadConfig = config.Load
)

var rootCmd = &cobra.Command{
	Use:   "pdfqa",
	Short: "Ask questions about a folder of documents",
	Long: `pdfqa indexes the PDF, markdown and text files under DATA_DIR and answers
questions about them with a retrieval-augmented language model.

Configuration is read from the environment and from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if verbose {
			c.LogLevel = slog.LevelDebug
		}
		// Logs go to stderr so that answers on stdout stay clean.
		app.ConfigureLogging(c, cmd.ErrOrStderr())
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// openIndexedApp opens the application and builds the index when it is empty.
func openIndexedApp(ctx context.Context, opts ...app.Option) (*app.App, error) {
	a, err := app.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := a.Ingest(ctx, false); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
