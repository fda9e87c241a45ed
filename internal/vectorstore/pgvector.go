package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"pdfqa/internal/contextutil"
)

// PgvectorStore implements VectorStore on PostgreSQL with the pgvector extension.
// Each collection is a table; rows keep an insertion sequence for tie-breaking.
type PgvectorStore struct {
	pool *pgxpool.Pool
}

// NewPgvectorStore connects to connString and enables the vector extension.
func NewPgvectorStore(ctx context.Context, connString string) (*PgvectorStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create vector extension: %w", err)
	}

	return &PgvectorStore{pool: pool}, nil
}

func tableName(collection string) string {
	return pgx.Identifier{"pdfqa_" + collection}.Sanitize()
}

func (s *PgvectorStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			embedding vector(%d) NOT NULL
		)`, tableName(collection), vectorSize)
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	// atttypmod of a vector column holds its declared dimension
	var actual int
	err := s.pool.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = $1::regclass AND attname = 'embedding'`,
		tableName(collection),
	).Scan(&actual)
	if err != nil {
		return fmt.Errorf("failed to read collection dimension: %w", err)
	}
	if actual != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actual)
	}

	logger.DebugContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

func (s *PgvectorStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, payload, embedding) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			embedding = EXCLUDED.embedding`,
		tableName(collection))

	for _, p := range points {
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload of point %s: %w", p.ID, err)
		}
		if _, err := tx.Exec(ctx, stmt, p.ID, payload, pgvector.NewVector(p.Vec)); err != nil {
			return fmt.Errorf("failed to insert point %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

func (s *PgvectorStore) Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	exists, err := s.tableExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []SearchResult{}, nil
	}

	q := fmt.Sprintf(`
		SELECT id, payload, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, seq
		LIMIT $2`,
		tableName(collection))

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, k)
	for rows.Next() {
		var r SearchResult
		var payload []byte
		var score float64
		if err := rows.Scan(&r.PointID, &payload, &score); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		r.Payload = make(map[string]any)
		if err := json.Unmarshal(payload, &r.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload of point %s: %w", r.PointID, err)
		}
		r.Score = float32(score)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

func (s *PgvectorStore) Count(ctx context.Context, collection string) (int, error) {
	exists, err := s.tableExists(ctx, collection)
	if err != nil || !exists {
		return 0, err
	}

	var n int
	if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName(collection))).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return n, nil
}

func (s *PgvectorStore) Reset(ctx context.Context, collection string, vectorSize int) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName(collection))); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	return s.EnsureCollection(ctx, collection, vectorSize)
}

// Close closes the connection pool.
func (s *PgvectorStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PgvectorStore) tableExists(ctx context.Context, collection string) (bool, error) {
	var regclass *string
	if err := s.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", tableName(collection)).Scan(&regclass); err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return regclass != nil, nil
}
