package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/storage"
)

// LocalStore implements VectorStore on the SQLite database in the vector store directory.
// Search is an exact brute-force scan; ties keep insertion order.
type LocalStore struct {
	collections *storage.CollectionRepo
	entries     *storage.EntryRepo
}

// NewLocalStore creates a LocalStore over an already migrated database.
func NewLocalStore(db *sql.DB) *LocalStore {
	return &LocalStore{
		collections: storage.NewCollectionRepo(db),
		entries:     storage.NewEntryRepo(db),
	}
}

func (s *LocalStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	if _, err := s.collections.GetOrCreate(ctx, collection, vectorSize); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	return nil
}

func (s *LocalStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	c, err := s.collections.Get(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to load collection %s: %w", collection, err)
	}

	records := make([]storage.EntryRecord, 0, len(points))
	for _, p := range points {
		if len(p.Vec) != c.Dimension {
			return fmt.Errorf("point %s has dimension %d, collection %s expects %d", p.ID, len(p.Vec), collection, c.Dimension)
		}
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload of point %s: %w", p.ID, err)
		}
		records = append(records, storage.EntryRecord{
			PointID: p.ID,
			Payload: string(payload),
			Vector:  p.Vec,
		})
	}

	if err := s.entries.UpsertBatch(ctx, collection, records); err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

func (s *LocalStore) Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	entries, err := s.entries.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != len(query) {
			return nil, fmt.Errorf("query has dimension %d, stored point %s has %d", len(query), e.PointID, len(e.Vector))
		}
		payload := make(map[string]any)
		if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload of point %s: %w", e.PointID, err)
		}
		results = append(results, SearchResult{
			PointID: e.PointID,
			Score:   cosine(query, e.Vector),
			Payload: payload,
		})
	}

	// entries come back in seq order, so a stable sort keeps ties in insertion order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *LocalStore) Count(ctx context.Context, collection string) (int, error) {
	return s.entries.Count(ctx, collection)
}

func (s *LocalStore) Reset(ctx context.Context, collection string, vectorSize int) error {
	if err := s.collections.Delete(ctx, collection); err != nil {
		return err
	}
	if _, err := s.collections.GetOrCreate(ctx, collection, vectorSize); err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	return nil
}

// cosine returns the cosine similarity of a and b, 0 when either is a zero vector.
func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
