package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ollamachat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure ollamachat and generates a .ollamachat.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
