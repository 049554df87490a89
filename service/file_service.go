package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/repository"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/tieubaoca/pdfqa-be/utils"
)

const DefaultListLimit = 100

// TextExtractor is satisfied by *PDFService.
type TextExtractor interface {
	ExtractTextWithPages(ctx context.Context, filePath string) (map[int]string, error)
}

// BatchEmbedder is satisfied by *EmbeddingService.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string, maxBatchSize int) ([][]float32, error)
}

// DocumentService owns the document lifecycle: upload, ingestion, status,
// listing and cascading delete.
type DocumentService struct {
	uploadDir     string
	maxFileSizeMB int
	documentRepo  repository.DocumentRepository
	vectorStore   database.VectorStore
	pdfService    TextExtractor
	chunker       *ChunkingService
	embedder      BatchEmbedder
}

func NewDocumentService(
	uploadDir string,
	maxFileSizeMB int,
	documentRepo repository.DocumentRepository,
	vectorStore database.VectorStore,
	pdfService TextExtractor,
	chunker *ChunkingService,
	embedder BatchEmbedder,
) *DocumentService {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = utils.DefaultMaxFileSizeMB
	}
	return &DocumentService{
		uploadDir:     uploadDir,
		maxFileSizeMB: maxFileSizeMB,
		documentRepo:  documentRepo,
		vectorStore:   vectorStore,
		pdfService:    pdfService,
		chunker:       chunker,
		embedder:      embedder,
	}
}

// Upload validates and stores a PDF, then ingests it synchronously. When c
// is not nil it receives progress events; the caller owns and closes it.
// Once the document record exists, every failure marks it failed.
func (s *DocumentService) Upload(ctx context.Context, filename string, size int64, src io.Reader, c chan<- types.ProcessingDocumentStatus) (*types.Document, error) {
	if err := utils.ValidateFileType(filename); err != nil {
		return nil, err
	}
	if err := utils.ValidateFileSize(size, s.maxFileSizeMB); err != nil {
		return nil, err
	}

	storedPath, err := utils.SaveUploadedFile(src, s.uploadDir, filename)
	if err != nil {
		return nil, err
	}

	doc := &types.Document{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(filename),
		FileSize:   size,
		UploadDate: time.Now(),
		Status:     types.DocumentStatusProcessing,
		StoredPath: storedPath,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	logger.Infow("Document uploaded", "document_id", doc.ID, "filename", doc.Filename, "size", size)

	if err := s.ingest(ctx, doc, c); err != nil {
		return nil, s.markFailed(ctx, doc, err, c)
	}
	return doc, nil
}

// IngestFile uploads a PDF that already sits on local disk.
func (s *DocumentService) IngestFile(ctx context.Context, path string, c chan<- types.ProcessingDocumentStatus) (*types.Document, error) {
	if err := utils.ValidateFileType(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return s.Upload(ctx, filepath.Base(path), info.Size(), f, c)
}

func (s *DocumentService) ingest(ctx context.Context, doc *types.Document, c chan<- types.ProcessingDocumentStatus) error {
	pages, err := s.pdfService.ExtractTextWithPages(ctx, doc.StoredPath)
	if err != nil {
		return err
	}
	totalPages := len(pages)
	doc.TotalPages = &totalPages
	logger.Infof("Extracted %d pages from %s", totalPages, doc.Filename)
	notify(ctx, c, types.ProcessingDocumentStatus{
		DocumentID:     doc.ID,
		Status:         "processing",
		Message:        "Texto extraído",
		Progress:       0.3,
		TotalPages:     totalPages,
		ProcessedPages: totalPages,
	})

	descriptors := s.chunker.ChunkText(pages)
	logger.Infof("Generated %d chunks from %s", len(descriptors), doc.Filename)
	notify(ctx, c, types.ProcessingDocumentStatus{
		DocumentID: doc.ID,
		Status:     "processing",
		Message:    fmt.Sprintf("%d fragmentos generados", len(descriptors)),
		Progress:   0.5,
		TotalPages: totalPages,
	})

	chunks, err := s.embedChunks(ctx, doc.ID, descriptors)
	if err != nil {
		return err
	}
	notify(ctx, c, types.ProcessingDocumentStatus{
		DocumentID: doc.ID,
		Status:     "processing",
		Message:    "Embeddings generados",
		Progress:   0.8,
		TotalPages: totalPages,
	})

	if err := s.vectorStore.InsertChunks(ctx, chunks); err != nil {
		return err
	}

	totalChunks := len(chunks)
	doc.TotalChunks = &totalChunks
	doc.Status = types.DocumentStatusReady
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	logger.Infow("Document ready", "document_id", doc.ID, "pages", totalPages, "chunks", totalChunks)
	notify(ctx, c, types.ProcessingDocumentStatus{
		DocumentID:     doc.ID,
		Status:         "completed",
		Message:        progressMessage(doc),
		Progress:       1,
		TotalPages:     totalPages,
		ProcessedPages: totalPages,
	})
	return nil
}

func (s *DocumentService) embedChunks(ctx context.Context, documentID string, descriptors []types.ChunkDescriptor) ([]*types.Chunk, error) {
	if len(descriptors) == 0 {
		return []*types.Chunk{}, nil
	}
	texts := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		texts = append(texts, d.Content)
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts, DefaultEmbedBatchSize)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(descriptors) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(descriptors), len(embeddings))
	}

	now := time.Now()
	chunks := make([]*types.Chunk, 0, len(descriptors))
	for i, d := range descriptors {
		chunks = append(chunks, &types.Chunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			Content:    d.Content,
			Embedding:  embeddings[i],
			PageNumber: d.PageNumber,
			ChunkIndex: d.ChunkIndex,
			WordCount:  d.WordCount,
			CreatedAt:  now,
		})
	}
	return chunks, nil
}

// markFailed records cause on the document and returns the error for the
// caller. Domain errors keep their kind; anything else becomes a PDF
// processing error.
func (s *DocumentService) markFailed(ctx context.Context, doc *types.Document, cause error, c chan<- types.ProcessingDocumentStatus) error {
	detail := cause.Error()
	domainErr, isDomain := types.AsError(cause)
	if isDomain {
		detail = domainErr.Message
	}
	msg := "Error procesando documento: " + detail

	if err := s.documentRepo.UpdateStatus(ctx, doc.ID, types.DocumentStatusFailed, &msg); err != nil {
		logger.Errorw("Failed to mark document as failed", "document_id", doc.ID, "error", err)
	}
	// Chunks of a failed document must not surface in unscoped searches.
	if err := s.vectorStore.DeleteChunksByDocument(ctx, doc.ID); err != nil {
		logger.Errorw("Failed to delete chunks of failed document", "document_id", doc.ID, "error", err)
	}
	doc.Status = types.DocumentStatusFailed
	doc.ErrorMessage = &msg
	logger.Warnw("Document processing failed", "document_id", doc.ID, "error", cause)
	notify(ctx, c, types.ProcessingDocumentStatus{
		DocumentID: doc.ID,
		Status:     "failed",
		Message:    msg,
	})

	if isDomain {
		return cause
	}
	return types.WrapError(types.KindPDFProcessing, cause, "%s", msg)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*types.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, types.NewError(types.KindDocumentNotFound, "Documento no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) GetStatus(ctx context.Context, id string) (*types.DocumentStatusResponse, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &types.DocumentStatusResponse{
		ID:              doc.ID,
		Filename:        doc.Filename,
		Status:          doc.Status,
		ErrorMessage:    doc.ErrorMessage,
		TotalPages:      doc.TotalPages,
		TotalChunks:     doc.TotalChunks,
		ProgressMessage: progressMessage(doc),
	}, nil
}

func (s *DocumentService) List(ctx context.Context, limit int) (*types.DocumentListResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	docs, err := s.documentRepo.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return &types.DocumentListResponse{
		Documents: docs,
		Total:     len(docs),
	}, nil
}

// Delete removes a document's chunks, then its record, then its stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.vectorStore.DeleteChunksByDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := s.documentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.NewError(types.KindDocumentNotFound, "Documento no encontrado")
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if doc.StoredPath != "" {
		if err := os.Remove(doc.StoredPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnw("Failed to remove stored file", "path", doc.StoredPath, "error", err)
		}
	}
	logger.Infow("Document deleted", "document_id", id)
	return nil
}

// Chunks lists a document's chunks in chunk index order.
func (s *DocumentService) Chunks(ctx context.Context, id string) ([]*types.Chunk, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.vectorStore.ListChunksByDocument(ctx, id)
}

func progressMessage(doc *types.Document) string {
	switch doc.Status {
	case types.DocumentStatusProcessing:
		return "Procesando documento..."
	case types.DocumentStatusReady:
		chunks := 0
		if doc.TotalChunks != nil {
			chunks = *doc.TotalChunks
		}
		return fmt.Sprintf("Documento listo. %d fragmentos generados.", chunks)
	case types.DocumentStatusFailed:
		msg := ""
		if doc.ErrorMessage != nil {
			msg = *doc.ErrorMessage
		}
		return "Error: " + msg
	default:
		return "Estado desconocido"
	}
}

func notify(ctx context.Context, c chan<- types.ProcessingDocumentStatus, status types.ProcessingDocumentStatus) {
	if c == nil {
		return
	}
	select {
	case c <- status:
	case <-ctx.Done():
	}
}
