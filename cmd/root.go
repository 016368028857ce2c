// Package cmd defines and implements the CLI commands for the smartdine
// crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chenmingwei23/smart-dine/pkg/config"
)

var (
	cfgFile     string
	development bool
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smartdine",
		Short: "Restaurant-data crawler for the smart-dine project.",
		Long: `smartdine is the data-ingestion tool for the smart-dine project.
It discovers venues from a map search feed, enriches each with a deep
per-venue page visit, and writes one timestamped JSON snapshot per run.`,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.Init(cfgFile); err != nil {
				return fmt.Errorf("initialize configuration: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.smartdine/config.yaml)")
	cmd.PersistentFlags().BoolVar(&development, "dev", false, "use the development logger")

	cmd.AddCommand(newCrawlCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
