package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"

	"pdfqa/internal/app"
	"pdfqa/internal/config"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about a local collection of PDF, markdown and text documents.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: pdfqa API
//   description: |
//     Retrieval-augmented question answering over a local document corpus.
//     Ask free-form questions, generate comprehension questions and get your answers evaluated.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app.ConfigureLogging(cfg, nil)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	// Build the index before serving so that the first request sees the documents.
	stats, err := a.Ingest(ctx, false)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	slog.Info("Index ready",
		"collection", cfg.Collection,
		"backend", cfg.VectorStoreBackend,
		"skipped", stats.Skipped,
		"chunks_embedded", stats.ChunksEmbedded,
	)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, a.Router()); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
