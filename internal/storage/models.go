package storage

import "time"

// Collection is a named set of vectors of one fixed dimension.
type Collection struct {
	Name      string
	Dimension int
	CreatedAt time.Time
}

// EntryRecord is one stored vector of the local vector store.
type EntryRecord struct {
	Seq     int64  // Insertion order, assigned by the database
	PointID string // Deterministic UUID of the chunk
	Payload string // JSON object with the chunk text and its origin
	Vector  []float32
}

// Manifest records a completed index build. It is written only after every entry
// has been persisted; its absence means the index is empty or was interrupted.
type Manifest struct {
	Collection     string
	Backend        string
	EmbeddingModel string
	Dimension      int
	EntryCount     int
	IndexVersion   string
	CompletedAt    time.Time
}
