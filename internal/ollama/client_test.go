package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newStub starts a fake Ollama daemon and returns a Client pointed at it.
func newStub(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL)
	t.Cleanup(c.Close)
	return c
}

func TestListModels(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[{"name":"llama3:latest","modified_at":"2024-05-01T10:00:00Z","size":123},{"name":"qwen2.5-coder:7b","modified_at":"2024-06-01T10:00:00Z","size":456}]}`)
	}))

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Name != "llama3:latest" || models[1].Name != "qwen2.5-coder:7b" {
		t.Errorf("unexpected catalog: %+v", models)
	}
}

func TestListModels_BackendError(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, err := c.ListModels(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestChat_NonStreaming(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.Model != "llama3" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Options.Temperature != 0.7 {
			t.Errorf("temperature = %v", req.Options.Temperature)
		}
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"hi"},"done":true,"prompt_eval_count":3,"eval_count":2}`)
	}))

	resp, err := c.Chat(context.Background(), "llama3", []Message{{Role: "user", Content: "hello"}}, 0.7)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Message.Content != "hi" {
		t.Errorf("content = %q, want %q", resp.Message.Content, "hi")
	}
	if resp.PromptEvalCount != 3 || resp.EvalCount != 2 {
		t.Errorf("counts = %d/%d, want 3/2", resp.PromptEvalCount, resp.EvalCount)
	}
}

func TestChat_BackendErrorBody(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'nope' not found"}`, http.StatusNotFound)
	}))

	_, err := c.Chat(context.Background(), "nope", []Message{{Role: "user", Content: "x"}}, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	// Backend error text is embedded for the relay to annotate.
	if got := err.Error(); !strings.Contains(got, "404") || !strings.Contains(got, "not found") {
		t.Errorf("error should embed backend text, got %q", got)
	}
}

func TestChatStream(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.Stream {
			t.Error("expected stream=true")
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"He"},"done":false}`)
		fmt.Fprintln(w, `this line is not json`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"llo"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true,"prompt_eval_count":3,"eval_count":2}`)
	}))

	events, err := c.ChatStream(context.Background(), "llama3", []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	var fragments []*ChatResponse
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
		fragments = append(fragments, ev.Response)
	}

	// Malformed line skipped; two content fragments plus the terminal one.
	if len(fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(fragments))
	}
	if fragments[0].Message.Content != "He" || fragments[1].Message.Content != "llo" {
		t.Errorf("unexpected fragment contents: %q, %q", fragments[0].Message.Content, fragments[1].Message.Content)
	}
	if !fragments[2].Done {
		t.Error("terminal fragment should have done=true")
	}
}

func TestChatStream_SlowGeneration(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"thinking"},"done":false}`)
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	// Shrink the non-streaming timeout far below the generation time:
	// streamed reads must not be bounded by it.
	c.httpClient.Timeout = 100 * time.Millisecond

	events, err := c.ChatStream(context.Background(), "llama3", []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	var fragments []*ChatResponse
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("stream cut short: %v", ev.Err)
		}
		fragments = append(fragments, ev.Response)
	}

	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if !fragments[1].Done {
		t.Error("terminal fragment should have done=true")
	}
}

func TestChatStream_AbortedMidStream(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"He"},"done":false}`)
		w.(http.Flusher).Flush()

		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	}))

	events, err := c.ChatStream(context.Background(), "llama3", []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	var fragments, errs int
	for ev := range events {
		if ev.Err != nil {
			errs++
			continue
		}
		fragments++
	}

	if fragments != 1 {
		t.Errorf("expected 1 fragment before the failure, got %d", fragments)
	}
	if errs != 1 {
		t.Errorf("expected exactly 1 error event, got %d", errs)
	}
}

func TestPull(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req pullRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Name != "llama3" {
			t.Errorf("name = %q", req.Name)
		}
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `not json`)
		fmt.Fprintln(w, `{"status":"downloading","total":100,"completed":50}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))

	events, err := c.Pull(context.Background(), "llama3")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}

	var lines []PullProgress
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("unexpected pull error: %v", ev.Err)
		}
		var p PullProgress
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			t.Fatalf("progress line not json: %v", err)
		}
		lines = append(lines, p)
	}

	if len(lines) != 3 {
		t.Fatalf("expected 3 progress events, got %d", len(lines))
	}
	if lines[1].Completed != 50 || lines[1].Total != 100 {
		t.Errorf("unexpected progress counters: %+v", lines[1])
	}
	if lines[2].Status != "success" {
		t.Errorf("final status = %q", lines[2].Status)
	}
}

func TestModelExists(t *testing.T) {
	c := newStub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"llama3:latest"},{"name":"qwen2.5-coder:7b"}]}`)
	}))

	ctx := context.Background()
	cases := []struct {
		query string
		want  bool
	}{
		{"qwen2.5-coder:7b", true}, // exact
		{"llama3", true},           // untagged query matches base name
		{"llama3:8b", false},       // tagged query needs an exact match
		{"mistral", false},
	}
	for _, tc := range cases {
		if got := c.ModelExists(ctx, tc.query); got != tc.want {
			t.Errorf("ModelExists(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestModelExists_BackendDown(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	defer c.Close()

	if c.ModelExists(context.Background(), "llama3") {
		t.Error("expected false when the backend is unreachable")
	}
}
