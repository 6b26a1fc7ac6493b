package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ziadkadry99/ollamachat/internal/relay"
)

// handleListModels serves GET /v1/models in the OpenAI list shape. An
// unreachable backend produces an empty list, never an error.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models := s.relay.ListModels(r.Context())
	writeJSON(w, map[string]any{
		"object": "list",
		"data":   models,
	})
}

// handleChatCompletions serves POST /v1/chat/completions, streaming or not.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req relay.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Stream {
		s.streamChatCompletion(w, r, req)
		return
	}

	resp, err := s.relay.ChatCompletion(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, resp)
}

// streamChatCompletion writes the completion as Server-Sent Events:
// one data line per delta chunk, a final empty-delta chunk, then the [DONE]
// terminator. A mid-stream failure produces a single error payload and no
// terminator.
func (s *Server) streamChatCompletion(w http.ResponseWriter, r *http.Request, req relay.ChatRequest) {
	events, err := s.relay.ChatCompletionStream(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for ev := range events {
		if ev.Err != nil {
			payload, _ := json.Marshal(map[string]string{"error": ev.Err.Error()})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			return
		}

		payload, err := json.Marshal(ev.Chunk)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
