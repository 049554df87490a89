package service

import (
	"context"

	"github.com/tieubaoca/pdfqa-be/types"
)

type AnswerComposer struct {
	llm AIService
}

func NewAnswerComposer(llm AIService) *AnswerComposer {
	return &AnswerComposer{llm: llm}
}

// NoContextResponse is returned when retrieval finds nothing. It never
// reaches the model.
func (c *AnswerComposer) NoContextResponse() *types.RAGResponse {
	return &types.RAGResponse{
		Answer:               NoContextMessage,
		IsAnswerable:         false,
		RetrievedChunksCount: 0,
		TokensUsed:           0,
		ChunkIDs:             []string{},
	}
}

// Compose asks the model to answer question from chunks. chunks must not be
// empty; use NoContextResponse for that case.
func (c *AnswerComposer) Compose(ctx context.Context, question string, chunks []types.ScoredChunk) (*types.RAGResponse, error) {
	prompt := BuildPrompt(FormatContext(chunks), question)

	answer, tokens, err := c.llm.GenerateAnswer(ctx, prompt)
	if err != nil {
		if _, ok := types.AsError(err); ok {
			return nil, err
		}
		return nil, types.WrapError(types.KindAnswerGeneration, err, "Failed to generate answer: %v", err)
	}

	chunkIDs := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		chunkIDs = append(chunkIDs, sc.Chunk.ID)
	}
	return &types.RAGResponse{
		Answer:               answer,
		IsAnswerable:         IsAnswerable(answer),
		RetrievedChunksCount: len(chunks),
		TokensUsed:           tokens,
		ChunkIDs:             chunkIDs,
	}, nil
}
