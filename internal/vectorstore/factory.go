package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"pdfqa/internal/config"
)

// NewFromConfig returns the VectorStore selected by cfg.VectorStoreBackend.
// db is the migrated local database and is only used by the local backend.
// Remote stores implement io.Closer.
func NewFromConfig(ctx context.Context, cfg *config.Config, db *sql.DB) (VectorStore, error) {
	switch cfg.VectorStoreBackend {
	case config.BackendLocal, "":
		return NewLocalStore(db), nil
	case config.BackendQdrant:
		store, err := NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendPgvector:
		store, err := NewPgvectorStore(ctx, cfg.PgvectorURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, &config.ConfigError{
			Field:   "VECTORSTORE_BACKEND",
			Message: fmt.Sprintf("unsupported backend %q", cfg.VectorStoreBackend),
		}
	}
}
