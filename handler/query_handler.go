package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/service"
	"github.com/tieubaoca/pdfqa-be/types"
)

type QueryHandler struct {
	rag       service.QuestionAnswerer
	websocket *service.WebSocketService
}

func NewQueryHandler(rag service.QuestionAnswerer) *QueryHandler {
	return &QueryHandler{
		rag:       rag,
		websocket: service.NewWebSocketService(rag),
	}
}

func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, "Cuerpo de la solicitud inválido")
		return
	}

	res, err := h.rag.AnswerQuestion(c.Request.Context(), req.Question, req.DocumentID)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, res)
}

func (h *QueryHandler) HandleWebSocket(c *gin.Context) {
	h.websocket.HandleQuery(c.Writer, c.Request)
}
