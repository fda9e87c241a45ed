package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// EntryRepo stores the vectors of the local vector store.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo creates a new EntryRepo.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// UpsertBatch inserts or replaces entries in a single transaction.
// A replaced entry keeps its original Seq.
func (r *EntryRepo) UpsertBatch(ctx context.Context, collection string, entries []EntryRecord) error {
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

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (collection, point_id, payload, vector) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, point_id) DO UPDATE SET payload = excluded.payload, vector = excluded.vector`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, collection, e.PointID, e.Payload, encodeVector(e.Vector)); err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.PointID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}
	return nil
}

// List returns every entry of the collection in insertion order.
func (r *EntryRepo) List(ctx context.Context, collection string) ([]EntryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT seq, point_id, payload, vector FROM entries WHERE collection = ? ORDER BY seq",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []EntryRecord
	for rows.Next() {
		var e EntryRecord
		var blob []byte
		if err := rows.Scan(&e.Seq, &e.PointID, &e.Payload, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.Vector, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.PointID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Count returns the number of entries in the collection.
func (r *EntryRepo) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE collection = ?", collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}
