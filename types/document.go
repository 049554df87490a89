package types

import "time"

// DocumentStatus is the lifecycle state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusUploading  DocumentStatus = "uploading"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document represents an uploaded PDF and its processing state
type Document struct {
	ID           string         `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	Filename     string         `json:"filename" bson:"filename" gorm:"size:255;not null"`
	FileSize     int64          `json:"file_size" bson:"file_size" gorm:"not null"`
	UploadDate   time.Time      `json:"upload_date" bson:"upload_date" gorm:"not null"`
	Status       DocumentStatus `json:"status" bson:"status" gorm:"size:20;not null"`
	ErrorMessage *string        `json:"error_message,omitempty" bson:"error_message,omitempty"`
	TotalPages   *int           `json:"total_pages,omitempty" bson:"total_pages,omitempty"`
	TotalChunks  *int           `json:"total_chunks,omitempty" bson:"total_chunks,omitempty"`
	StoredPath   string         `json:"-" bson:"stored_path" gorm:"size:1024"`
}

func (Document) TableName() string { return "documents" }

func (d Document) GetID() string { return d.ID }

// Chunk is a page-anchored span of a document's text. Embedding is nil
// until the chunk has been embedded; only embedded chunks are searchable.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	PageNumber int       `json:"page_number"`
	ChunkIndex int       `json:"chunk_index"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScoredChunk pairs a chunk with its similarity to a query (1 - cosine distance).
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// ChunkDescriptor is what the chunker emits before ids and embeddings exist.
type ChunkDescriptor struct {
	Content    string `json:"content"`
	PageNumber int    `json:"page_number"`
	ChunkIndex int    `json:"chunk_index"`
	WordCount  int    `json:"word_count"`
}

// QueryLog is an append-only audit record of one answered question.
type QueryLog struct {
	ID              string    `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	DocumentID      string    `json:"document_id" bson:"document_id" gorm:"type:varchar(36);not null;index"`
	QueryText       string    `json:"query_text" bson:"query_text" gorm:"type:text;not null"`
	AnswerText      string    `json:"answer_text" bson:"answer_text" gorm:"type:text;not null"`
	RetrievedChunks []string  `json:"retrieved_chunks" bson:"retrieved_chunks" gorm:"type:text;serializer:json"`
	IsAnswerable    bool      `json:"is_answerable" bson:"is_answerable" gorm:"not null"`
	ResponseTimeMs  int64     `json:"response_time_ms" bson:"response_time_ms" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" gorm:"not null"`
}

func (QueryLog) TableName() string { return "query_logs" }

func (q QueryLog) GetID() string { return q.ID }
