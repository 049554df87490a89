package types

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketQuery = "query"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WebSocketQueryPayload struct {
	Question   string `json:"question"`
	DocumentID string `json:"document_id,omitempty"`
}
