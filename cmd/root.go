package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ollamachat",
	Short: "Local chat server for Ollama models with project context",
	Long: `Ollamachat runs a local HTTP server that speaks the OpenAI chat API
and relays requests to an Ollama instance on your machine. It can inject
project files, the README, and a directory tree into the system prompt so
models answer with your codebase in view.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".ollamachat.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
