package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sqliteMaxParams keeps IN lists below SQLite's default bound-parameter limit.
const sqliteMaxParams = 500

// EmbeddingCacheRepo persists computed embeddings keyed by model and text hash.
type EmbeddingCacheRepo struct {
	db *sql.DB
}

// NewEmbeddingCacheRepo creates a new EmbeddingCacheRepo.
func NewEmbeddingCacheRepo(db *sql.DB) *EmbeddingCacheRepo {
	return &EmbeddingCacheRepo{db: db}
}

// GetEmbeddings returns the cached vectors for the keys that are present.
func (r *EmbeddingCacheRepo) GetEmbeddings(ctx context.Context, model string, keys []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(keys))

	for start := 0; start < len(keys); start += sqliteMaxParams {
		end := start + sqliteMaxParams
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		args := make([]any, 0, len(batch)+1)
		args = append(args, model)
		for _, k := range batch {
			args = append(args, k)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")

		rows, err := r.db.QueryContext(ctx,
			"SELECT text_hash, vector FROM embedding_cache WHERE model = ? AND text_hash IN ("+placeholders+")",
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query embedding cache: %w", err)
		}

		for rows.Next() {
			var key string
			var blob []byte
			if err := rows.Scan(&key, &blob); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan cached embedding: %w", err)
			}
			vec, err := decodeVector(blob)
			if err != nil {
				_ = rows.Close()
				return nil, err
			}
			out[key] = vec
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, fmt.Errorf("row iteration error: %w", err)
		}
	}

	return out, nil
}

// PutEmbeddings stores vectors in a single transaction, overwriting existing keys.
func (r *EmbeddingCacheRepo) PutEmbeddings(ctx context.Context, model string, entries map[string][]float32) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for key, vec := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO embedding_cache (model, text_hash, vector) VALUES (?, ?, ?)",
			model, key, encodeVector(vec),
		); err != nil {
			return fmt.Errorf("failed to cache embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit embedding cache: %w", err)
	}
	return nil
}

// Count returns the number of cached vectors for model.
func (r *EmbeddingCacheRepo) Count(ctx context.Context, model string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embedding_cache WHERE model = ?", model).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embedding cache: %w", err)
	}
	return count, nil
}
