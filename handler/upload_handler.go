package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/service"
	"github.com/tieubaoca/pdfqa-be/types"
)

type UploadHandler struct {
	documentService *service.DocumentService
}

func NewUploadHandler(documentService *service.DocumentService) *UploadHandler {
	return &UploadHandler{
		documentService: documentService,
	}
}

// UploadDocumentHandler ingests a multipart "file" and answers once the
// document is ready or has failed. Clients accepting text/event-stream get
// progress events before the final "result" or "error" event.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		sendBadRequest(c, "Archivo inválido")
		return
	}
	defer file.Close()

	if c.GetHeader("Accept") == "text/event-stream" {
		h.uploadWithProgress(c, header, file)
		return
	}

	doc, err := h.documentService.Upload(c.Request.Context(), header.Filename, header.Size, file, nil)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, doc)
}

type uploadResult struct {
	doc *types.Document
	err error
}

func (h *UploadHandler) uploadWithProgress(c *gin.Context, header *multipart.FileHeader, file multipart.File) {
	statusChan := make(chan types.ProcessingDocumentStatus)
	resultChan := make(chan uploadResult, 1)
	go func() {
		doc, err := h.documentService.Upload(c.Request.Context(), header.Filename, header.Size, file, statusChan)
		close(statusChan)
		resultChan <- uploadResult{doc: doc, err: err}
	}()

	c.Status(http.StatusOK)
	for status := range statusChan {
		c.SSEvent("progress", status)
		c.Writer.Flush()
	}

	res := <-resultChan
	if res.err != nil {
		_, body := errorResponse(res.err)
		c.SSEvent("error", body)
	} else {
		c.SSEvent("result", types.DataResponse{Status: true, Data: res.doc})
	}
	c.Writer.Flush()
}
