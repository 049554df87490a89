package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
	"gorm.io/gorm"
)

// chunkRecord is the chunks table row. The vector width matches
// text-embedding-3-small. Rows go away with their document; the documents
// table must be migrated first.
type chunkRecord struct {
	ID         string           `gorm:"type:varchar(36);primaryKey"`
	DocumentID string           `gorm:"type:varchar(36);not null;index"`
	Content    string           `gorm:"type:text;not null"`
	Embedding  *pgvector.Vector `gorm:"type:vector(1536)"`
	PageNumber int              `gorm:"not null"`
	ChunkIndex int              `gorm:"not null"`
	WordCount  int
	CreatedAt  time.Time
	Document   *types.Document `gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE"`
}

func (chunkRecord) TableName() string { return "chunks" }

type scoredChunkRecord struct {
	ID         string
	DocumentID string
	Content    string
	Embedding  *pgvector.Vector
	PageNumber int
	ChunkIndex int
	WordCount  int
	CreatedAt  time.Time
	Similarity float64
}

func newChunkRecord(c *types.Chunk) chunkRecord {
	r := chunkRecord{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Content:    c.Content,
		PageNumber: c.PageNumber,
		ChunkIndex: c.ChunkIndex,
		WordCount:  c.WordCount,
		CreatedAt:  c.CreatedAt,
	}
	if c.Embedding != nil {
		v := pgvector.NewVector(c.Embedding)
		r.Embedding = &v
	}
	return r
}

func (r chunkRecord) toChunk() *types.Chunk {
	c := &types.Chunk{
		ID:         r.ID,
		DocumentID: r.DocumentID,
		Content:    r.Content,
		PageNumber: r.PageNumber,
		ChunkIndex: r.ChunkIndex,
		WordCount:  r.WordCount,
		CreatedAt:  r.CreatedAt,
	}
	if r.Embedding != nil {
		c.Embedding = r.Embedding.Slice()
	}
	return c
}

// PGVectorStore keeps chunks in PostgreSQL and ranks them with the pgvector
// cosine distance operator (<=>).
type PGVectorStore struct {
	db *gorm.DB
}

func NewPGVectorStore(ctx context.Context, db *gorm.DB) (*PGVectorStore, error) {
	s := &PGVectorStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PGVectorStore) migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	if err := db.AutoMigrate(&chunkRecord{}); err != nil {
		return fmt.Errorf("failed to migrate chunks: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops)").Error; err != nil {
		return fmt.Errorf("failed to create embedding index: %w", err)
	}
	return nil
}

func (s *PGVectorStore) ReInit(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Migrator().DropTable(&chunkRecord{}); err != nil {
		return fmt.Errorf("failed to drop chunks: %w", err)
	}
	return s.migrate(ctx)
}

func (s *PGVectorStore) InsertChunks(ctx context.Context, chunks []*types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	records := make([]chunkRecord, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, newChunkRecord(c))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(records, BatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	logger.Debugf("Inserted %d chunks", len(records))
	return nil
}

func (s *PGVectorStore) SimilaritySearch(ctx context.Context, embedding []float32, topK int, minScore float64, documentID string) ([]types.ScoredChunk, error) {
	results := make([]types.ScoredChunk, 0)
	if topK <= 0 {
		return results, nil
	}

	query := `SELECT id, document_id, content, embedding, page_number, chunk_index, word_count, created_at,
		1 - (embedding <=> @vec) AS similarity
		FROM chunks
		WHERE embedding IS NOT NULL AND 1 - (embedding <=> @vec) >= @min_score`
	args := map[string]interface{}{
		"vec":       pgvector.NewVector(embedding),
		"min_score": minScore,
		"top_k":     topK,
	}
	if documentID != "" {
		query += " AND document_id = @document_id"
		args["document_id"] = documentID
	}
	query += " ORDER BY embedding <=> @vec LIMIT @top_k"

	var rows []scoredChunkRecord
	if err := s.db.WithContext(ctx).Raw(query, args).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	for _, row := range rows {
		record := chunkRecord{
			ID:         row.ID,
			DocumentID: row.DocumentID,
			Content:    row.Content,
			Embedding:  row.Embedding,
			PageNumber: row.PageNumber,
			ChunkIndex: row.ChunkIndex,
			WordCount:  row.WordCount,
			CreatedAt:  row.CreatedAt,
		}
		results = append(results, types.ScoredChunk{
			Chunk: record.toChunk(),
			Score: row.Similarity,
		})
	}
	return results, nil
}

func (s *PGVectorStore) ListChunksByDocument(ctx context.Context, documentID string) ([]*types.Chunk, error) {
	var records []chunkRecord
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	chunks := make([]*types.Chunk, 0, len(records))
	for _, r := range records {
		chunks = append(chunks, r.toChunk())
	}
	return chunks, nil
}

func (s *PGVectorStore) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&chunkRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}
