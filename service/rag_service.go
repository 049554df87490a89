package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/repository"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/tieubaoca/pdfqa-be/utils"
)

// Retriever is satisfied by *RetrievalService.
type Retriever interface {
	RetrieveRelevantChunks(ctx context.Context, query string, opts RetrieveOptions) ([]types.ScoredChunk, error)
}

// RAGService answers questions end to end: retrieve, compose, audit.
type RAGService struct {
	retriever    Retriever
	composer     *AnswerComposer
	documentRepo repository.DocumentRepository
	queryLogRepo repository.QueryLogRepository
}

func NewRAGService(
	retriever Retriever,
	composer *AnswerComposer,
	documentRepo repository.DocumentRepository,
	queryLogRepo repository.QueryLogRepository,
) *RAGService {
	return &RAGService{
		retriever:    retriever,
		composer:     composer,
		documentRepo: documentRepo,
		queryLogRepo: queryLogRepo,
	}
}

// AnswerQuestion answers question from the chunks of documentID, or of every
// document when documentID is empty. The audit entry is best effort.
func (s *RAGService) AnswerQuestion(ctx context.Context, question, documentID string) (*types.RAGResponse, error) {
	if utils.IsBlank(question) {
		return nil, types.NewError(types.KindInvalidInput, "No se puede responder pregunta vacía")
	}
	start := time.Now()

	logDocumentID := s.logScope(ctx, documentID)

	resp, err := s.answer(ctx, question, documentID)
	if err != nil {
		if _, ok := types.AsError(err); ok {
			return nil, err
		}
		return nil, types.WrapError(types.KindOrchestration, err, "Error al responder pregunta: %v", err)
	}

	if logDocumentID != "" {
		s.logQuery(ctx, logDocumentID, question, resp, time.Since(start))
	}
	return resp, nil
}

func (s *RAGService) answer(ctx context.Context, question, documentID string) (*types.RAGResponse, error) {
	chunks, err := s.retriever.RetrieveRelevantChunks(ctx, question, RetrieveOptions{DocumentID: documentID})
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return s.composer.NoContextResponse(), nil
	}
	return s.composer.Compose(ctx, question, chunks)
}

// logScope picks the document a query log is filed under. Unscoped
// questions are filed under the oldest document, if there is one.
func (s *RAGService) logScope(ctx context.Context, documentID string) string {
	if documentID != "" {
		return documentID
	}
	if s.documentRepo == nil {
		return ""
	}
	id, err := s.documentRepo.FirstID(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warnw("Failed to resolve query log document", "error", err)
		}
		return ""
	}
	return id
}

func (s *RAGService) logQuery(ctx context.Context, documentID, question string, resp *types.RAGResponse, elapsed time.Duration) {
	if s.queryLogRepo == nil {
		return
	}
	entry := &types.QueryLog{
		ID:              uuid.NewString(),
		DocumentID:      documentID,
		QueryText:       question,
		AnswerText:      resp.Answer,
		RetrievedChunks: append([]string{}, resp.ChunkIDs...),
		IsAnswerable:    resp.IsAnswerable,
		ResponseTimeMs:  elapsed.Milliseconds(),
		CreatedAt:       time.Now(),
	}
	if err := s.queryLogRepo.Create(ctx, entry); err != nil {
		logger.Warnw("Failed to log query",
			"document_id", documentID,
			"error", err,
		)
	}
}
