// Package cmd provides the CLI commands for fathom.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom/pkg/version"
)

// Persistent flags shared by all commands.
var (
	configPath string
	debugMode  bool
	noColor    bool
)

// NewRootCmd creates the root command for the fathom CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fathom",
		Short: "Multi-provider search with result blending",
		Long: `Fathom fans a query out to an internal knowledge index and several
web search backends in parallel, deduplicates and scores the combined
results, and returns a ranked list blended per the active search mode.

Run 'fathom search <query>' directly, or 'fathom serve' to expose the
engine to MCP clients.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("fathom version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./fathom.yaml, then ~/.config/fathom/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.fathom/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newModesCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}
