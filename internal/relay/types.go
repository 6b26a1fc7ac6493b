package relay

import (
	openai "github.com/sashabaranov/go-openai"
)

// ChatMessage is one inbound conversation message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UploadedFile is a file the client sends inline for context.
type UploadedFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ChatRequest is the body of POST /v1/chat/completions. It is the OpenAI
// chat request shape extended with context-injection parameters.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`

	// Optional explicit system prompt override.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Files uploaded by the client (filename + content).
	UploadedFiles []UploadedFile `json:"uploaded_files,omitempty"`

	// Project context injection.
	ProjectRoot     string   `json:"project_root,omitempty"`
	Files           []string `json:"files,omitempty"`
	IncludeReadme   bool     `json:"include_readme,omitempty"`
	IncludeTree     bool     `json:"include_tree,omitempty"`
	IncludeAllFiles bool     `json:"include_all_files,omitempty"`
}

// ContextInfo describes what context was injected, echoed back to the
// client on non-streaming completions.
type ContextInfo struct {
	IncludedFiles []string `json:"included_files"`
	ContextLength int      `json:"context_length"`
	MessageCount  int      `json:"message_count"`
}

// ChatCompletionResponse is the OpenAI completion object with the
// context-injection sidecar.
type ChatCompletionResponse struct {
	openai.ChatCompletionResponse
	ContextInfo *ContextInfo `json:"context_info,omitempty"`
}

// StreamEvent is one item of a streaming completion: an OpenAI-style chunk
// or a terminal error. The channel closes after the final chunk (normal end
// of stream) or after one error event.
type StreamEvent struct {
	Chunk *openai.ChatCompletionStreamResponse
	Err   error
}
