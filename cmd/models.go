package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ollamachat/internal/config"
	"github.com/ziadkadry99/ollamachat/internal/ollama"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available on the local Ollama instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		client := ollama.NewClient(cfg.OllamaURL)
		defer client.Close()

		models, err := client.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing models: %w", err)
		}
		if len(models) == 0 {
			fmt.Println("No models found. Download one with `ollamachat pull <model>`.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
		for _, m := range models {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, formatSize(m.Size), formatModified(m.ModifiedAt))
		}
		return w.Flush()
	},
}

func formatSize(bytes int64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.0f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func formatModified(raw string) string {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
