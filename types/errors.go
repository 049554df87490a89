package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable category tag of an Error. Boundaries switch on it.
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindEmbedding        ErrorKind = "embedding_error"
	KindRetrieval        ErrorKind = "retrieval_error"
	KindAnswerGeneration ErrorKind = "answer_generation_error"
	KindOrchestration    ErrorKind = "orchestration_error"
	KindInvalidFileType  ErrorKind = "invalid_file_type"
	KindFileTooLarge     ErrorKind = "file_too_large"
	KindPDFProcessing    ErrorKind = "pdf_processing_error"
	KindDocumentNotFound ErrorKind = "document_not_found"
)

// Error is the single error type of the system. Every failure that crosses a
// service boundary is one of the kinds above.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError keeps err as the cause. The message should already describe err
// when the caller wants it visible to clients.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
