package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listModelsTool defines the list_models MCP tool.
var listModelsTool = mcp.NewTool("list_models",
	mcp.WithDescription("List the models available on the local Ollama instance."),
)

// chatTool defines the chat MCP tool.
var chatTool = mcp.NewTool("chat",
	mcp.WithDescription("Send a prompt to a local Ollama model and return the full completion."),
	mcp.WithString("model",
		mcp.Required(),
		mcp.Description("Model to use, e.g. llama3.2:3b"),
	),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("User prompt"),
	),
	mcp.WithString("system_prompt",
		mcp.Description("System prompt override"),
	),
	mcp.WithNumber("temperature",
		mcp.Description("Sampling temperature (default 0.7)"),
	),
)

// projectContextTool defines the project_context MCP tool.
var projectContextTool = mcp.NewTool("project_context",
	mcp.WithDescription("Build a text snapshot of a project directory: file tree, README, and selected file contents."),
	mcp.WithString("root",
		mcp.Description("Project root directory (default: current working directory)"),
	),
	mcp.WithArray("files",
		mcp.Description("Relative paths of files to include"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithBoolean("include_readme",
		mcp.Description("Include the project README (default true)"),
	),
	mcp.WithBoolean("include_tree",
		mcp.Description("Include the file tree (default true)"),
	),
	mcp.WithBoolean("all_files",
		mcp.Description("Include every text file found under the root"),
	),
)
