package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pdfqa/internal/app"
	"pdfqa/internal/indexer"
)

var (
	ingestDir   string
	ingestForce bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector index from the document folder",
	Long: `Loads every supported document under DATA_DIR, splits it into chunks and
stores their embeddings. Nothing is done when the index is already populated
unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "document folder (defaults to DATA_DIR)")
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "discard the existing index and rebuild it")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ingestDir != "" {
		cfg.DataDir = ingestDir
	}

	out := cmd.OutOrStdout()
	progress := &buildProgress{out: out}

	a, err := app.New(ctx, cfg, app.WithProgress(progress.update))
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	color.New(color.FgBlue).Fprintf(out, "Indexing %s into %s (%s)\n", cfg.DataDir, cfg.Collection, cfg.VectorStoreBackend)

	stats, err := a.Ingest(ctx, ingestForce)
	progress.finish()
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printCoverage(out, stats)
	return nil
}

// buildProgress renders index build progress, creating the bar once the total is known.
type buildProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (p *buildProgress) update(done, total int) {
	if p.bar == nil {
		p.bar = getProgressBar(p.out, total, "Embedding chunks")
	}
	_ = p.bar.Set(done)
}

func (p *buildProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.out)
	}
}

func getProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printCoverage(w io.Writer, stats indexer.CoverageStats) {
	if stats.Skipped {
		color.New(color.FgYellow).Fprintln(w, "Index already populated, nothing to do. Use --force to rebuild.")
		return
	}
	if stats.ChunksEmbedded == 0 {
		color.New(color.FgYellow).Fprintln(w, "No text found, the index is still empty.")
		return
	}

	color.New(color.FgGreen).Fprintf(w, "Indexed %d chunks\n", stats.ChunksEmbedded)
	fmt.Fprintf(w, "  files scanned:     %d\n", stats.FilesScanned)
	fmt.Fprintf(w, "  pages processed:   %d\n", stats.PagesProcessed)
	fmt.Fprintf(w, "  empty pages:       %d\n", stats.PagesWith0Chunks)
	fmt.Fprintf(w, "  tokens per chunk:  min %d, mean %.0f, p95 %d, max %d\n",
		stats.ChunkTokenStats.Min, stats.ChunkTokenStats.Mean, stats.ChunkTokenStats.P95, stats.ChunkTokenStats.Max)
	fmt.Fprintf(w, "  index version:     %s\n", stats.IndexVersion)
}
