package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
)

const (
	wsReadLimit   = 512 * 1024
	wsPongTimeout = 60 * time.Second
)

// QuestionAnswerer is satisfied by *RAGService.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, question, documentID string) (*types.RAGResponse, error)
}

// WebSocketService answers questions over a websocket, one reply per query
// message, in arrival order.
type WebSocketService struct {
	rag      QuestionAnswerer
	upgrader websocket.Upgrader
}

func NewWebSocketService(rag QuestionAnswerer) *WebSocketService {
	return &WebSocketService{
		rag: rag,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *WebSocketService) HandleQuery(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnw("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnw("Websocket read error", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))

		resp := s.handleMessage(ctx, p)
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warnw("Websocket write error", "error", err)
			return
		}
	}
}

func (s *WebSocketService) handleMessage(ctx context.Context, p []byte) types.WebSocketResponse {
	var req types.WebsocketRequest
	if err := json.Unmarshal(p, &req); err != nil {
		return wsError(string(types.KindInvalidInput), "Mensaje inválido")
	}

	switch req.Type {
	case types.TypeWebsocketPing:
		return types.WebSocketResponse{Type: types.TypeWebsocketPong}
	case types.TypeWebsocketQuery:
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			return wsError(string(types.KindInvalidInput), "Mensaje inválido")
		}
		var payload types.WebSocketQueryPayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			return wsError(string(types.KindInvalidInput), "Mensaje inválido")
		}
		answer, err := s.rag.AnswerQuestion(ctx, payload.Question, payload.DocumentID)
		if err != nil {
			if e, ok := types.AsError(err); ok {
				return wsError(string(e.Kind), e.Message)
			}
			return wsError(string(types.KindOrchestration), err.Error())
		}
		return types.WebSocketResponse{Type: types.TypeWebsocketQuery, Payload: answer}
	default:
		return wsError(string(types.KindInvalidInput), "Tipo de mensaje desconocido: "+req.Type)
	}
}

func wsError(code, message string) types.WebSocketResponse {
	return types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketErrorResponse{Code: code, Message: message},
	}
}
