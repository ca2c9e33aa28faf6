package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/modes"
	"github.com/fathom-search/fathom/internal/ui"
)

func newModesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List the configured search modes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			registry := modes.NewRegistry(cfg)

			if jsonOutput {
				out := make(map[string]config.Mode, len(cfg.Modes))
				for _, name := range registry.Names() {
					m, _ := registry.Get(name)
					out[name] = m
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			var lines []string
			for _, name := range registry.Names() {
				m, _ := registry.Get(name)
				line := fmt.Sprintf("%-12s %d providers, ratio %.1f, deadline %dms",
					name, len(m.Providers), m.BlendRatio, m.OverallDeadlineMs)
				if m.QueryExpansion {
					line += ", expansion"
				}
				if m.RequiresPersona != "" {
					line += fmt.Sprintf(", persona %s only", m.RequiresPersona)
				}
				lines = append(lines, line)
			}
			ui.NewRenderer(cmd.OutOrStdout(), noColor).RenderModes(lines)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output modes as JSON")
	return cmd
}
