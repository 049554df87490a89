package service

import (
	"context"
	"sort"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/tieubaoca/pdfqa-be/utils"
)

const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultEmbedBatchSize = 100
)

// EmbeddingClient is the part of *openai.Client the gateway needs.
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type EmbeddingService struct {
	client EmbeddingClient
	model  string
}

func NewEmbeddingService(client EmbeddingClient, model string) *EmbeddingService {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &EmbeddingService{
		client: client,
		model:  model,
	}
}

// NewOpenAIEmbeddingClient builds a go-openai client pointed at baseURL.
func NewOpenAIEmbeddingClient(baseURL, apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if utils.IsBlank(text) {
		return nil, types.NewError(types.KindEmbedding, "Cannot embed empty text")
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, types.WrapError(types.KindEmbedding, err, "Failed to generate embedding: %v", err)
	}
	if len(resp.Data) == 0 {
		return nil, types.NewError(types.KindEmbedding, "Failed to generate embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedBatch embeds texts in groups of at most maxBatchSize. Blank texts are
// dropped before the remote call, so the result has one vector per
// non-blank input, in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string, maxBatchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultEmbedBatchSize
	}

	valid := make([]string, 0, len(texts))
	for _, text := range texts {
		if !utils.IsBlank(text) {
			valid = append(valid, text)
		}
	}
	if len(valid) == 0 {
		return nil, types.NewError(types.KindEmbedding, "No valid texts to embed")
	}

	embeddings := make([][]float32, 0, len(valid))
	for start := 0; start < len(valid); start += maxBatchSize {
		end := min(start+maxBatchSize, len(valid))
		batch := valid[start:end]

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(s.model),
		})
		if err != nil {
			return nil, types.WrapError(types.KindEmbedding, err, "Failed to generate batch embeddings: %v", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, types.NewError(types.KindEmbedding,
				"Failed to generate batch embeddings: expected %d vectors, got %d", len(batch), len(resp.Data))
		}

		data := resp.Data
		sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
		for _, d := range data {
			embeddings = append(embeddings, d.Embedding)
		}
		logger.Debugf("Embedded batch %d-%d of %d texts", start, end, len(valid))
	}
	return embeddings, nil
}
