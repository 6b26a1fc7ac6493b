package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ollamachat/internal/config"
	mcpserver "github.com/ziadkadry99/ollamachat/internal/mcp"
	"github.com/ziadkadry99/ollamachat/internal/ollama"
	"github.com/ziadkadry99/ollamachat/internal/relay"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing local model chat and project context tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		client := ollama.NewClient(cfg.OllamaURL)
		defer client.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "ollamachat MCP server started on stdio (backend=%s)\n", cfg.OllamaURL)

		srv := mcpserver.NewServer(relay.New(client, cfg.SystemPrompt))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
