package ollama

import "encoding/json"

// Message is a single chat message in the Ollama wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

// ChatResponse is one response object from /api/chat. For streaming calls
// each NDJSON line decodes into one of these; the terminal line has Done set.
type ChatResponse struct {
	Model           string  `json:"model"`
	CreatedAt       string  `json:"created_at"`
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	DoneReason      string  `json:"done_reason,omitempty"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

// ChatEvent is one item of a streaming chat: either a decoded response
// fragment or a transport error. The channel closes after the terminal
// fragment or the first error.
type ChatEvent struct {
	Response *ChatResponse
	Err      error
}

// TagModel is one entry of the /api/tags catalog.
type TagModel struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

type tagsResponse struct {
	Models []TagModel `json:"models"`
}

type pullRequest struct {
	Name string `json:"name"`
}

// PullEvent is one progress line from /api/pull, forwarded verbatim, or a
// transport error. The channel closes after the last line or the first error.
type PullEvent struct {
	Data json.RawMessage
	Err  error
}

// PullProgress is the decoded shape of a pull progress line, for callers
// that need the counters (the HTTP surface forwards the raw line instead).
type PullProgress struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
	Error     string `json:"error,omitempty"`
}
