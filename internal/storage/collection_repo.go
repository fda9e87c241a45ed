package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// CollectionRepo provides methods for collection operations.
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepo creates a new CollectionRepo.
func NewCollectionRepo(db *sql.DB) *CollectionRepo {
	return &CollectionRepo{db: db}
}

// Get returns the named collection. Returns ErrNotFound if it does not exist.
func (r *CollectionRepo) Get(ctx context.Context, name string) (Collection, error) {
	var c Collection
	var createdAtStr string
	err := r.db.QueryRowContext(ctx,
		"SELECT name, dimension, created_at FROM collections WHERE name = ?",
		name,
	).Scan(&c.Name, &c.Dimension, &createdAtStr)
	if err == sql.ErrNoRows {
		return Collection{}, ErrNotFound
	}
	if err != nil {
		return Collection{}, fmt.Errorf("failed to query collection: %w", err)
	}

	c.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return Collection{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return c, nil
}

// GetOrCreate gets an existing collection by name, or creates it with the given dimension.
// An existing collection with a different dimension is an error.
func (r *CollectionRepo) GetOrCreate(ctx context.Context, name string, dimension int) (Collection, error) {
	c, err := r.Get(ctx, name)
	if err == nil {
		if c.Dimension != dimension {
			return Collection{}, fmt.Errorf("collection %s has dimension %d, requested %d", name, c.Dimension, dimension)
		}
		return c, nil
	}
	if err != ErrNotFound {
		return Collection{}, err
	}

	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO collections (name, dimension) VALUES (?, ?)",
		name, dimension,
	); err != nil {
		return Collection{}, fmt.Errorf("failed to create collection: %w", err)
	}

	return r.Get(ctx, name)
}

// Delete removes a collection and, through the cascade, all of its entries.
// Deleting a missing collection is not an error.
func (r *CollectionRepo) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}
