// Package relay bridges OpenAI-shaped chat requests to the Ollama chat
// protocol and shapes responses back, injecting project context into the
// system prompt when asked to.
package relay

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/ollamachat/internal/contextbuilder"
	"github.com/ziadkadry99/ollamachat/internal/ollama"
)

// DefaultTemperature is used when the request leaves temperature unset.
const DefaultTemperature = 0.7

// DefaultSystemPrompt is the assistant persona used when the request does
// not override the system prompt.
const DefaultSystemPrompt = `You are a helpful assistant.

When answering questions:
- Be clear and concise
- Provide working code examples when relevant
- Explain your reasoning

If files are provided below, you can reference and analyze them.`

// Relay owns the translation between the OpenAI-compatible surface and the
// Ollama backend. It holds no per-request state and is safe for concurrent
// use.
type Relay struct {
	client       *ollama.Client
	systemPrompt string
}

// New creates a Relay on top of an Ollama client. systemPrompt overrides
// DefaultSystemPrompt when non-empty.
func New(client *ollama.Client, systemPrompt string) *Relay {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Relay{client: client, systemPrompt: systemPrompt}
}

// ListModels returns the backend catalog in OpenAI model-list form. An
// unreachable backend yields an empty catalog, not an error; the cause is
// only visible in logs.
func (r *Relay) ListModels(ctx context.Context) []openai.Model {
	tags, err := r.client.ListModels(ctx)
	if err != nil {
		log.Printf("relay: could not fetch models from Ollama: %v", err)
		return []openai.Model{}
	}

	models := make([]openai.Model, 0, len(tags))
	for _, tag := range tags {
		models = append(models, openai.Model{
			ID:        tag.Name,
			Object:    "model",
			CreatedAt: parseCreated(tag.ModifiedAt),
			OwnedBy:   "ollama",
		})
	}
	return models
}

// ChatCompletion handles a non-streaming chat request: one backend round
// trip mapped into a completion object with a single choice.
func (r *Relay) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatCompletionResponse, error) {
	messages, info, err := r.prepare(req)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Chat(ctx, req.Model, messages, temperature(req))
	if err != nil {
		return nil, r.annotate(err, req.Model)
	}

	role := resp.Message.Role
	if role == "" {
		role = openai.ChatMessageRoleAssistant
	}

	return &ChatCompletionResponse{
		ChatCompletionResponse: openai.ChatCompletionResponse{
			ID:      newChatID(),
			Object:  "chat.completion",
			Created: parseCreated(resp.CreatedAt),
			Model:   req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    role,
					Content: resp.Message.Content,
				},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{
				PromptTokens:     resp.PromptEvalCount,
				CompletionTokens: resp.EvalCount,
				TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			},
		},
		ContextInfo: info,
	}, nil
}

// ChatCompletionStream handles a streaming chat request. Every backend
// fragment with non-empty content becomes one delta chunk; the terminal
// fragment becomes a final chunk with an empty delta and finish_reason
// "stop", after which the channel closes. A mid-stream transport failure
// delivers exactly one error event and closes the channel.
func (r *Relay) ChatCompletionStream(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error) {
	messages, _, err := r.prepare(req)
	if err != nil {
		return nil, err
	}

	backend, err := r.client.ChatStream(ctx, req.Model, messages, temperature(req))
	if err != nil {
		return nil, r.annotate(err, req.Model)
	}

	id := newChatID()
	out := make(chan StreamEvent)
	go func() {
		defer close(out)

		for ev := range backend {
			if ev.Err != nil {
				out <- StreamEvent{Err: r.annotate(ev.Err, req.Model)}
				return
			}

			fragment := ev.Response
			if content := fragment.Message.Content; content != "" {
				out <- StreamEvent{Chunk: &openai.ChatCompletionStreamResponse{
					ID:      id,
					Object:  "chat.completion.chunk",
					Created: parseCreated(fragment.CreatedAt),
					Model:   req.Model,
					Choices: []openai.ChatCompletionStreamChoice{{
						Index: 0,
						Delta: openai.ChatCompletionStreamChoiceDelta{Content: content},
					}},
				}}
			}

			if fragment.Done {
				out <- StreamEvent{Chunk: &openai.ChatCompletionStreamResponse{
					ID:      id,
					Object:  "chat.completion.chunk",
					Created: parseCreated(fragment.CreatedAt),
					Model:   req.Model,
					Choices: []openai.ChatCompletionStreamChoice{{
						Index:        0,
						Delta:        openai.ChatCompletionStreamChoiceDelta{},
						FinishReason: openai.FinishReasonStop,
					}},
				}}
				return
			}
		}
	}()

	return out, nil
}

// Pull forwards backend download-progress events.
func (r *Relay) Pull(ctx context.Context, name string) (<-chan ollama.PullEvent, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &InvalidRequestError{Reason: "model is required"}
	}
	events, err := r.client.Pull(ctx, name)
	if err != nil {
		return nil, r.annotate(err, name)
	}
	return events, nil
}

// ModelExists reports whether the named model is present in the backend
// catalog (exact name, or base name for untagged queries).
func (r *Relay) ModelExists(ctx context.Context, name string) bool {
	return r.client.ModelExists(ctx, name)
}

// prepare validates the request and assembles the outbound message list
// with the system prompt (plus any injected context) in front.
func (r *Relay) prepare(req ChatRequest) ([]ollama.Message, *ContextInfo, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, nil, &InvalidRequestError{Reason: "model is required"}
	}
	if len(req.Messages) == 0 {
		return nil, nil, &InvalidRequestError{Reason: "at least one message is required"}
	}

	system, info, err := r.buildSystemContent(req)
	if err != nil {
		return nil, nil, err
	}

	messages := make([]ollama.Message, 0, len(req.Messages)+1)
	messages = append(messages, ollama.Message{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range req.Messages {
		messages = append(messages, ollama.Message{Role: m.Role, Content: m.Content})
	}
	info.MessageCount = len(messages)

	return messages, info, nil
}

// buildSystemContent combines the system prompt with uploaded-file and
// project context sections.
func (r *Relay) buildSystemContent(req ChatRequest) (string, *ContextInfo, error) {
	info := &ContextInfo{IncludedFiles: []string{}}

	var parts []string

	if len(req.UploadedFiles) > 0 {
		var b strings.Builder
		b.WriteString("## Uploaded Files\n")
		for _, f := range req.UploadedFiles {
			lang := contextbuilder.FenceHint(f.Filename)
			fmt.Fprintf(&b, "### %s\n```%s\n%s\n```\n\n", f.Filename, lang, f.Content)
			info.IncludedFiles = append(info.IncludedFiles, f.Filename)
		}
		parts = append(parts, b.String())
	}

	if wantsProjectContext(req) {
		builder, err := contextbuilder.New(req.ProjectRoot)
		if err != nil {
			return "", nil, fmt.Errorf("building project context: %w", err)
		}
		snapshot := builder.BuildContext(contextbuilder.ContextOptions{
			SelectedFiles:   req.Files,
			IncludeReadme:   req.IncludeReadme,
			IncludeTree:     req.IncludeTree,
			IncludeAllFiles: req.IncludeAllFiles,
		})
		if snapshot != "" {
			parts = append(parts, snapshot)
			info.IncludedFiles = append(info.IncludedFiles, req.Files...)
		}
	}

	content := req.SystemPrompt
	if content == "" {
		content = r.systemPrompt
	}
	if len(parts) > 0 {
		content += "\n\n" + strings.Join(parts, "\n")
	}

	for _, p := range parts {
		info.ContextLength += len(p)
	}
	return content, info, nil
}

// wantsProjectContext reports whether the request opts into filesystem
// context. A plain OpenAI-style request never touches the filesystem.
func wantsProjectContext(req ChatRequest) bool {
	return req.ProjectRoot != "" || len(req.Files) > 0 ||
		req.IncludeReadme || req.IncludeTree || req.IncludeAllFiles
}

func temperature(req ChatRequest) float64 {
	if req.Temperature != nil {
		return *req.Temperature
	}
	return DefaultTemperature
}

// newChatID synthesizes a completion id. Random UUIDs avoid the collision
// pitfalls of hashing message content.
func newChatID() string {
	return "chatcmpl-" + uuid.NewString()
}

// parseCreated converts Ollama's RFC 3339 created_at/modified_at timestamps
// to unix seconds, falling back to the current time.
func parseCreated(s string) int64 {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Unix()
	}
	return time.Now().Unix()
}
