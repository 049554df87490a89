package database

import (
	"context"

	"github.com/tieubaoca/pdfqa-be/types"
)

// VectorStore persists chunks with their embeddings and answers cosine
// similarity queries. Score is 1 - cosine distance and is not clamped.
type VectorStore interface {
	InsertChunks(ctx context.Context, chunks []*types.Chunk) error
	// SimilaritySearch returns at most topK embedded chunks whose score is
	// >= minScore, best first. An empty documentID searches every document.
	SimilaritySearch(ctx context.Context, embedding []float32, topK int, minScore float64, documentID string) ([]types.ScoredChunk, error)
	// ListChunksByDocument returns a document's chunks ordered by chunk index.
	ListChunksByDocument(ctx context.Context, documentID string) ([]*types.Chunk, error)
	DeleteChunksByDocument(ctx context.Context, documentID string) error
}

// Reinitializer is implemented by stores that can drop and recreate their
// chunk index.
type Reinitializer interface {
	ReInit(ctx context.Context) error
}

// Pinger reports whether a backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }
