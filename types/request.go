package types

type QueryRequest struct {
	Question   string `json:"question" binding:"required"`
	DocumentID string `json:"document_id,omitempty"`
}

type ListDocumentsRequest struct {
	Limit int `form:"limit"`
}
