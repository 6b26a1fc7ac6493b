// Package ollama is a typed HTTP client for the Ollama API: model catalog,
// chat completion (single-shot and NDJSON streaming), and model pulls.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where a local Ollama daemon listens.
const DefaultBaseURL = "http://localhost:11434"

const (
	// chatTimeout bounds catalog and non-streaming chat round trips;
	// inference is slow.
	chatTimeout = 5 * time.Minute
	// pullTimeout bounds model downloads, which can be tens of gigabytes.
	pullTimeout = time.Hour
	// dialTimeout bounds connection setup for streaming requests, whose
	// bodies stay open for the whole generation.
	dialTimeout = 10 * time.Second
)

// maxLineSize caps a single NDJSON line read from a stream.
const maxLineSize = 1 << 20

// Client talks to one Ollama daemon. It is safe for concurrent use; the
// underlying http.Client pools connections. Construct it once at startup and
// Close it at shutdown.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	pullClient   *http.Client
}

// NewClient creates a Client for the given base URL, defaulting to
// DefaultBaseURL when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: chatTimeout},
		// No total timeout: a streamed generation may legitimately run
		// longer than any fixed bound. The request context cancels reads;
		// only connection setup is time-limited.
		streamClient: &http.Client{
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: dialTimeout}).DialContext,
				TLSHandshakeTimeout: dialTimeout,
			},
		},
		pullClient: &http.Client{Timeout: pullTimeout},
	}
}

// BaseURL returns the configured daemon address.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases pooled connections. The Client must not be used afterwards.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	c.streamClient.CloseIdleConnections()
	c.pullClient.CloseIdleConnections()
}

// ListModels fetches the local model catalog from /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]TagModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create tags request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}
	return tags.Models, nil
}

// Chat issues a non-streaming chat completion against /api/chat.
func (c *Client) Chat(ctx context.Context, model string, messages []Message, temperature float64) (*ChatResponse, error) {
	resp, err := c.postChat(ctx, model, messages, temperature, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &chatResp, nil
}

// ChatStream issues a streaming chat completion. A background goroutine
// reads NDJSON lines from the response body and delivers them on the
// returned channel; malformed lines are skipped. The channel closes after
// the terminal (done) fragment, the first transport error, or context
// cancellation.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, temperature float64) (<-chan ChatEvent, error) {
	resp, err := c.postChat(ctx, model, messages, temperature, true)
	if err != nil {
		return nil, err
	}

	events := make(chan ChatEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var fragment ChatResponse
			if err := json.Unmarshal(line, &fragment); err != nil {
				// Malformed lines are skipped, not fatal.
				continue
			}

			select {
			case events <- ChatEvent{Response: &fragment}:
			case <-ctx.Done():
				return
			}

			if fragment.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case events <- ChatEvent{Err: fmt.Errorf("reading chat stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return events, nil
}

func (c *Client) postChat(ctx context.Context, model string, messages []Message, temperature float64, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   stream,
		Options:  chatOptions{Temperature: temperature},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.httpClient
	if stream {
		client = c.streamClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return resp, nil
}

// Pull downloads a model via /api/pull and forwards each progress line
// verbatim on the returned channel. On a mid-download failure exactly one
// error event is delivered and the channel closes; there is no retry.
func (c *Client) Pull(ctx context.Context, name string) (<-chan PullEvent, error) {
	body, err := json.Marshal(pullRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("marshal pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.pullClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	events := make(chan PullEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 || !json.Valid(line) {
				continue
			}

			data := make(json.RawMessage, len(line))
			copy(data, line)

			select {
			case events <- PullEvent{Data: data}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case events <- PullEvent{Err: fmt.Errorf("reading pull stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return events, nil
}

// ModelExists reports whether the named model appears in the local catalog.
// A name without a tag also matches any catalog entry whose base name (the
// portion before ":") is equal. This is a convenience heuristic only.
func (c *Client) ModelExists(ctx context.Context, name string) bool {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false
	}

	base, _, hasTag := strings.Cut(name, ":")
	for _, m := range models {
		if m.Name == name {
			return true
		}
		if !hasTag {
			mBase, _, _ := strings.Cut(m.Name, ":")
			if mBase == base {
				return true
			}
		}
	}
	return false
}
