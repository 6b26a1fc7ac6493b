package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/ollamachat/internal/contextbuilder"
	"github.com/ziadkadry99/ollamachat/internal/relay"
)

// handleListModels lists the models available on the local Ollama instance.
func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	models := s.relay.ListModels(ctx)
	if len(models) == 0 {
		return mcp.NewToolResultText("No models found. Make sure Ollama is running and has models downloaded."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d model(s):\n", len(models)))
	for _, m := range models {
		sb.WriteString("- " + m.ID + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleChat runs a single non-streaming completion.
func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := request.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: model"), nil
	}
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}

	req := relay.ChatRequest{
		Model: model,
		Messages: []relay.ChatMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		SystemPrompt: request.GetString("system_prompt", ""),
	}
	if temp := request.GetFloat("temperature", -1); temp >= 0 {
		req.Temperature = &temp
	}

	resp, err := s.relay.ChatCompletion(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}
	if len(resp.Choices) == 0 {
		return mcp.NewToolResultError("model returned no choices"), nil
	}

	return mcp.NewToolResultText(resp.Choices[0].Message.Content), nil
}

// handleProjectContext builds a context snapshot of a project directory.
func (s *Server) handleProjectContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	builder, err := contextbuilder.New(request.GetString("root", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid project root: %v", err)), nil
	}

	snapshot := builder.BuildContext(contextbuilder.ContextOptions{
		SelectedFiles:   request.GetStringSlice("files", nil),
		IncludeReadme:   request.GetBool("include_readme", true),
		IncludeTree:     request.GetBool("include_tree", true),
		IncludeAllFiles: request.GetBool("all_files", false),
	})

	if strings.TrimSpace(snapshot) == "" {
		return mcp.NewToolResultText("No context could be built for this directory."), nil
	}
	return mcp.NewToolResultText(snapshot), nil
}
