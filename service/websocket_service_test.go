package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

type stubAnswerer struct {
	resp *types.RAGResponse
	err  error
}

func (s stubAnswerer) AnswerQuestion(_ context.Context, question, _ string) (*types.RAGResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, types.NewError(types.KindInvalidInput, "No se puede responder pregunta vacía")
	}
	return s.resp, s.err
}

func dialQuerySocket(t *testing.T, svc *WebSocketService) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(svc.HandleQuery))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsReply struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func TestWebSocketService_PingPong(t *testing.T) {
	conn := dialQuerySocket(t, NewWebSocketService(stubAnswerer{}))

	require.NoError(t, conn.WriteJSON(types.WebsocketRequest{Type: types.TypeWebsocketPing}))
	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, types.TypeWebsocketPong, reply.Type)
}

func TestWebSocketService_Query(t *testing.T) {
	answer := &types.RAGResponse{Answer: "15 días", IsAnswerable: true, RetrievedChunksCount: 1, ChunkIDs: []string{"c1"}}
	conn := dialQuerySocket(t, NewWebSocketService(stubAnswerer{resp: answer}))

	require.NoError(t, conn.WriteJSON(types.WebsocketRequest{
		Type:    types.TypeWebsocketQuery,
		Payload: types.WebSocketQueryPayload{Question: "¿Vacaciones?", DocumentID: "d1"},
	}))
	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, types.TypeWebsocketQuery, reply.Type)
	assert.Equal(t, "15 días", reply.Payload["answer"])
	assert.Equal(t, true, reply.Payload["is_answerable"])
}

func TestWebSocketService_Errors(t *testing.T) {
	conn := dialQuerySocket(t, NewWebSocketService(stubAnswerer{}))

	cases := []struct {
		name string
		msg  string
		code string
	}{
		{"malformed", `{"type":`, string(types.KindInvalidInput)},
		{"unknown type", `{"type":"chat"}`, string(types.KindInvalidInput)},
		{"blank question", `{"type":"query","payload":{"question":"  "}}`, string(types.KindInvalidInput)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tc.msg)))
			var reply wsReply
			require.NoError(t, conn.ReadJSON(&reply))
			assert.Equal(t, types.TypeWebsocketError, reply.Type)
			assert.Equal(t, tc.code, reply.Payload["code"])
		})
	}
}
