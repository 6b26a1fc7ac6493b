package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/ollamachat/internal/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socketMessage is the outgoing WebSocket message format.
type socketMessage struct {
	Type    string `json:"type"` // "delta", "done" or "error"
	Content string `json:"content,omitempty"`
	Model   string `json:"model,omitempty"`
}

// handleChatSocket streams chat completions over a WebSocket. Each incoming
// message is a full chat request; the reply is a sequence of "delta" frames
// followed by a single "done" frame.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req relay.ChatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendSocketError(conn, "invalid message format")
			continue
		}

		s.streamToSocket(conn, r, req)
	}
}

func (s *Server) streamToSocket(conn *websocket.Conn, r *http.Request, req relay.ChatRequest) {
	events, err := s.relay.ChatCompletionStream(r.Context(), req)
	if err != nil {
		s.sendSocketError(conn, err.Error())
		return
	}

	for ev := range events {
		if ev.Err != nil {
			s.sendSocketError(conn, ev.Err.Error())
			return
		}
		chunk := ev.Chunk
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			s.sendSocketMessage(conn, socketMessage{
				Type:    "delta",
				Content: choice.Delta.Content,
				Model:   chunk.Model,
			})
		}
		if choice.FinishReason != "" {
			s.sendSocketMessage(conn, socketMessage{Type: "done", Model: chunk.Model})
		}
	}
}

func (s *Server) sendSocketMessage(conn *websocket.Conn, msg socketMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendSocketError(conn *websocket.Conn, message string) {
	s.sendSocketMessage(conn, socketMessage{Type: "error", Content: message})
}
