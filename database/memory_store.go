package database

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/tieubaoca/pdfqa-be/types"
)

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. Suitable for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []*types.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertChunks(_ context.Context, chunks []*types.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		cp := *c
		s.chunks = append(s.chunks, &cp)
	}
	return nil
}

func (s *MemoryStore) SimilaritySearch(_ context.Context, embedding []float32, topK int, minScore float64, documentID string) ([]types.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]types.ScoredChunk, 0)
	if topK <= 0 {
		return results, nil
	}
	for _, c := range s.chunks {
		if c.Embedding == nil {
			continue
		}
		if documentID != "" && c.DocumentID != documentID {
			continue
		}
		score := cosineSimilarity(c.Embedding, embedding)
		if score < minScore {
			continue
		}
		cp := *c
		results = append(results, types.ScoredChunk{Chunk: &cp, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) ListChunksByDocument(_ context.Context, documentID string) ([]*types.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]*types.Chunk, 0)
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			cp := *c
			chunks = append(chunks, &cp)
		}
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
	return chunks, nil
}

func (s *MemoryStore) DeleteChunksByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	clear(s.chunks[len(kept):])
	s.chunks = kept
	return nil
}

func (s *MemoryStore) ReInit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return nil
}

// cosineSimilarity is 0 when either vector has zero norm.
func cosineSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
