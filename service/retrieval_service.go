package service

import (
	"context"

	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/tieubaoca/pdfqa-be/utils"
)

const (
	DefaultTopK          = 5
	DefaultMinSimilarity = 0.3
)

// Embedder turns text into a vector. Satisfied by *EmbeddingService.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// RetrieveOptions overrides the service defaults for one call. Nil pointers
// keep the default.
type RetrieveOptions struct {
	DocumentID    string
	TopK          *int
	MinSimilarity *float64
}

type RetrievalService struct {
	embedder      Embedder
	store         database.VectorStore
	topK          int
	minSimilarity float64
}

func NewRetrievalService(embedder Embedder, store database.VectorStore, topK int, minSimilarity float64) *RetrievalService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalService{
		embedder:      embedder,
		store:         store,
		topK:          topK,
		minSimilarity: minSimilarity,
	}
}

// RetrieveRelevantChunks embeds query and returns the best matching chunks,
// most similar first.
func (s *RetrievalService) RetrieveRelevantChunks(ctx context.Context, query string, opts RetrieveOptions) ([]types.ScoredChunk, error) {
	if utils.IsBlank(query) {
		return nil, types.NewError(types.KindRetrieval, "Query cannot be empty")
	}

	topK := s.topK
	if opts.TopK != nil {
		topK = *opts.TopK
	}
	minSimilarity := s.minSimilarity
	if opts.MinSimilarity != nil {
		minSimilarity = *opts.MinSimilarity
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.KindRetrieval, err, "Failed to retrieve chunks: %v", err)
	}

	chunks, err := s.store.SimilaritySearch(ctx, embedding, topK, minSimilarity, opts.DocumentID)
	if err != nil {
		return nil, types.WrapError(types.KindRetrieval, err, "Failed to retrieve chunks: %v", err)
	}
	logger.Debugw("Retrieved chunks",
		"count", len(chunks),
		"top_k", topK,
		"min_similarity", minSimilarity,
		"document_id", opts.DocumentID,
	)
	return chunks, nil
}
