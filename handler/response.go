package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
)

// statusForKind maps an error kind to its HTTP status code.
func statusForKind(kind types.ErrorKind) int {
	switch kind {
	case types.KindInvalidInput, types.KindInvalidFileType:
		return http.StatusBadRequest
	case types.KindDocumentNotFound:
		return http.StatusNotFound
	case types.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case types.KindPDFProcessing:
		return http.StatusUnprocessableEntity
	case types.KindEmbedding, types.KindRetrieval, types.KindAnswerGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func sendError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Errorw("Request failed", "path", c.FullPath(), "code", body.Code, "error", err)
	}
	c.JSON(status, body)
}

// errorResponse hides the message of errors that carry no kind.
func errorResponse(err error) (int, types.DataResponse) {
	e, ok := types.AsError(err)
	if !ok {
		return http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Code:    string(types.KindOrchestration),
			Message: "Error interno del servidor",
		}
	}
	return statusForKind(e.Kind), types.DataResponse{
		Status:  false,
		Code:    string(e.Kind),
		Message: e.Message,
	}
}

func sendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.DataResponse{
		Status:  false,
		Code:    string(types.KindInvalidInput),
		Message: message,
	})
}

func sendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, types.DataResponse{
		Status: true,
		Data:   data,
	})
}
