package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ollamachat/internal/config"
	"github.com/ziadkadry99/ollamachat/internal/ollama"
	"github.com/ziadkadry99/ollamachat/internal/progress"
	"github.com/ziadkadry99/ollamachat/internal/relay"
)

var pullCmd = &cobra.Command{
	Use:   "pull <model>",
	Short: "Download a model to the local Ollama instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		client := ollama.NewClient(cfg.OllamaURL)
		defer client.Close()

		rly := relay.New(client, "")
		events, err := rly.Pull(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		reporter := progress.NewReporter()
		var currentDigest string

		for ev := range events {
			if ev.Err != nil {
				reporter.Finish()
				return ev.Err
			}

			var p ollama.PullProgress
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				continue
			}
			if p.Error != "" {
				reporter.Finish()
				return fmt.Errorf("pull failed: %s", p.Error)
			}

			switch {
			case p.Total > 0:
				// New layer: restart the bar.
				if p.Digest != currentDigest {
					reporter.Finish()
					reporter.Start(p.Total, p.Status)
					currentDigest = p.Digest
				}
				reporter.Update(p.Completed)
			case p.Status != "":
				reporter.Finish()
				currentDigest = ""
				reporter.Describe(p.Status)
			}
		}

		reporter.Finish()
		fmt.Fprintf(os.Stderr, "Model %s is ready.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
