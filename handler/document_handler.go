package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/service"
	"github.com/tieubaoca/pdfqa-be/types"
)

type DocumentHandler struct {
	documentService *service.DocumentService
}

func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

func (h *DocumentHandler) HandleList(c *gin.Context) {
	var req types.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		sendBadRequest(c, "Parámetro limit inválido")
		return
	}
	if req.Limit < 0 {
		sendBadRequest(c, "Parámetro limit inválido")
		return
	}
	res, err := h.documentService.List(c.Request.Context(), req.Limit)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, res)
}

func (h *DocumentHandler) HandleStatus(c *gin.Context) {
	res, err := h.documentService.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, res)
}

func (h *DocumentHandler) HandleChunks(c *gin.Context) {
	chunks, err := h.documentService.Chunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, chunks)
}

// ServeDocument streams the stored PDF inline.
func (h *DocumentHandler) ServeDocument(c *gin.Context) {
	doc, err := h.documentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	if _, err := os.Stat(doc.StoredPath); err != nil {
		sendError(c, types.NewError(types.KindDocumentNotFound, "Archivo no encontrado"))
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.File(doc.StoredPath)
}

func (h *DocumentHandler) HandleDelete(c *gin.Context) {
	if err := h.documentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
