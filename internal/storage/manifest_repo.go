package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_manifest_store.go -package=mocks pdfqa/internal/storage ManifestStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ManifestStore defines the interface for index manifest operations.
type ManifestStore interface {
	// Get returns the manifest of a collection. Returns ErrNotFound if no build completed.
	Get(ctx context.Context, collection string) (*Manifest, error)
	// Put records a completed build, replacing any previous manifest.
	Put(ctx context.Context, m *Manifest) error
	// Delete removes the manifest so the index reports itself unpopulated.
	Delete(ctx context.Context, collection string) error
}

// ManifestRepo provides methods for manifest operations.
// It implements the ManifestStore interface.
type ManifestRepo struct {
	db *sql.DB
}

// NewManifestRepo creates a new ManifestRepo.
func NewManifestRepo(db *sql.DB) *ManifestRepo {
	return &ManifestRepo{db: db}
}

func (r *ManifestRepo) Get(ctx context.Context, collection string) (*Manifest, error) {
	var m Manifest
	var completedAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT collection, backend, embedding_model, dimension, entry_count, index_version, completed_at
		 FROM index_manifest WHERE collection = ?`,
		collection,
	).Scan(&m.Collection, &m.Backend, &m.EmbeddingModel, &m.Dimension, &m.EntryCount, &m.IndexVersion, &completedAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query manifest: %w", err)
	}

	m.CompletedAt, err = parseTimestamp(completedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse completed_at: %w", err)
	}

	return &m, nil
}

func (r *ManifestRepo) Put(ctx context.Context, m *Manifest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO index_manifest (collection, backend, embedding_model, dimension, entry_count, index_version, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (collection) DO UPDATE SET
			backend = excluded.backend,
			embedding_model = excluded.embedding_model,
			dimension = excluded.dimension,
			entry_count = excluded.entry_count,
			index_version = excluded.index_version,
			completed_at = CURRENT_TIMESTAMP`,
		m.Collection, m.Backend, m.EmbeddingModel, m.Dimension, m.EntryCount, m.IndexVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert manifest: %w", err)
	}
	return nil
}

func (r *ManifestRepo) Delete(ctx context.Context, collection string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM index_manifest WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("failed to delete manifest: %w", err)
	}
	return nil
}
