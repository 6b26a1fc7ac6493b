package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type pullModelRequest struct {
	Model string `json:"model"`
}

// handlePullModel serves POST /api/models/pull, streaming backend progress
// lines as Server-Sent Events terminated by [DONE]. A mid-download failure
// produces a single error event and no terminator.
func (s *Server) handlePullModel(w http.ResponseWriter, r *http.Request) {
	var req pullModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	events, err := s.relay.Pull(r.Context(), req.Model)
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
			payload, _ := json.Marshal(map[string]string{"error": ev.Err.Error(), "status": "error"})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", ev.Data)
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// handleCheckModel serves GET /api/models/check/{model}. The wildcard keeps
// tags and registry paths (e.g. "library/llama3:8b") intact.
func (s *Server) handleCheckModel(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "*")
	if model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}

	writeJSON(w, map[string]any{
		"exists": s.relay.ModelExists(r.Context(), model),
		"model":  model,
	})
}

// RecommendedModel is one curated entry of the Ollama library catalog.
type RecommendedModel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     string `json:"size"`
	Category string `json:"category"`
}

// recommendedModels is a curated list of popular Ollama library models.
var recommendedModels = []RecommendedModel{
	// Chat / General
	{ID: "llama3.2:3b", Name: "Llama 3.2 3B", Size: "~2GB", Category: "chat"},
	{ID: "llama3.2:1b", Name: "Llama 3.2 1B", Size: "~1.3GB", Category: "chat"},
	{ID: "llama3.1:8b", Name: "Llama 3.1 8B", Size: "~4.7GB", Category: "chat"},
	{ID: "llama3.1:70b", Name: "Llama 3.1 70B", Size: "~40GB", Category: "chat"},
	{ID: "gemma2:9b", Name: "Gemma 2 9B", Size: "~5.4GB", Category: "chat"},
	{ID: "gemma2:27b", Name: "Gemma 2 27B", Size: "~16GB", Category: "chat"},
	{ID: "mistral:7b", Name: "Mistral 7B", Size: "~4.1GB", Category: "chat"},
	{ID: "mixtral:8x7b", Name: "Mixtral 8x7B", Size: "~26GB", Category: "chat"},
	{ID: "phi3:mini", Name: "Phi-3 Mini", Size: "~2.2GB", Category: "chat"},
	{ID: "phi3:medium", Name: "Phi-3 Medium", Size: "~7.9GB", Category: "chat"},
	{ID: "qwen2.5:7b", Name: "Qwen 2.5 7B", Size: "~4.4GB", Category: "chat"},
	{ID: "qwen2.5:14b", Name: "Qwen 2.5 14B", Size: "~8.9GB", Category: "chat"},
	{ID: "qwen2.5:32b", Name: "Qwen 2.5 32B", Size: "~19GB", Category: "chat"},
	// Coding
	{ID: "qwen2.5-coder:7b", Name: "Qwen 2.5 Coder 7B", Size: "~4.4GB", Category: "code"},
	{ID: "qwen2.5-coder:14b", Name: "Qwen 2.5 Coder 14B", Size: "~8.9GB", Category: "code"},
	{ID: "qwen2.5-coder:32b", Name: "Qwen 2.5 Coder 32B", Size: "~19GB", Category: "code"},
	{ID: "deepseek-coder-v2:16b", Name: "DeepSeek Coder V2 16B", Size: "~8.9GB", Category: "code"},
	{ID: "codellama:7b", Name: "CodeLlama 7B", Size: "~3.8GB", Category: "code"},
	{ID: "codellama:13b", Name: "CodeLlama 13B", Size: "~7.3GB", Category: "code"},
	{ID: "starcoder2:7b", Name: "StarCoder2 7B", Size: "~4GB", Category: "code"},
	// Vision
	{ID: "llava:7b", Name: "LLaVA 7B", Size: "~4.7GB", Category: "vision"},
	{ID: "llava:13b", Name: "LLaVA 13B", Size: "~8GB", Category: "vision"},
	{ID: "llava-llama3:8b", Name: "LLaVA Llama3 8B", Size: "~5GB", Category: "vision"},
	// Embedding
	{ID: "nomic-embed-text", Name: "Nomic Embed Text", Size: "~274MB", Category: "embedding"},
	{ID: "mxbai-embed-large", Name: "MXBai Embed Large", Size: "~670MB", Category: "embedding"},
}

// handleRecommendedModels serves GET /api/models/recommended.
func (s *Server) handleRecommendedModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"models": recommendedModels})
}

// searchResult is one entry of the model search response.
type searchResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       string `json:"size"`
	Category   string `json:"category"`
	Downloaded bool   `json:"downloaded"`
}

// handleSearchModels serves GET /api/models/search?q=, merging the local
// catalog with the recommended library list. Local models sort first; the
// result is capped at 20 entries.
func (s *Server) handleSearchModels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	query := strings.ToLower(strings.TrimSpace(q))

	local := s.relay.ListModels(r.Context())
	localIDs := make(map[string]bool, len(local))

	var results []searchResult
	for _, m := range local {
		localIDs[m.ID] = true
		if query == "" || strings.Contains(strings.ToLower(m.ID), query) {
			results = append(results, searchResult{
				ID:         m.ID,
				Name:       m.ID,
				Category:   "local",
				Downloaded: true,
			})
		}
	}

	for _, m := range recommendedModels {
		if localIDs[m.ID] {
			continue
		}
		if query == "" ||
			strings.Contains(strings.ToLower(m.ID), query) ||
			strings.Contains(strings.ToLower(m.Name), query) {
			results = append(results, searchResult{
				ID:         m.ID,
				Name:       m.Name,
				Size:       m.Size,
				Category:   m.Category,
				Downloaded: false,
			})
		}
	}

	if len(results) > 20 {
		results = results[:20]
	}
	if results == nil {
		results = []searchResult{}
	}

	writeJSON(w, map[string]any{"results": results, "query": q})
}
