package types

import "time"

type DataResponse struct {
	Status  bool        `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RAGResponse is the result of answering one question.
type RAGResponse struct {
	Answer               string   `json:"answer"`
	IsAnswerable         bool     `json:"is_answerable"`
	RetrievedChunksCount int      `json:"retrieved_chunks_count"`
	TokensUsed           int      `json:"tokens_used"`
	ChunkIDs             []string `json:"chunk_ids"`
}

type DocumentStatusResponse struct {
	ID              string         `json:"id"`
	Filename        string         `json:"filename"`
	Status          DocumentStatus `json:"status"`
	ErrorMessage    *string        `json:"error_message,omitempty"`
	TotalPages      *int           `json:"total_pages,omitempty"`
	TotalChunks     *int           `json:"total_chunks,omitempty"`
	ProgressMessage string         `json:"progress_message"`
}

type DocumentListResponse struct {
	Documents []*Document `json:"documents"`
	Total     int         `json:"total"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// ProcessingDocumentStatus is pushed to upload listeners while a PDF is ingested.
type ProcessingDocumentStatus struct {
	DocumentID     string  `json:"document_id"`
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Progress       float64 `json:"progress"`
	TotalPages     int     `json:"total_pages"`
	ProcessedPages int     `json:"processed_pages"`
}
