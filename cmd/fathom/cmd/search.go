package cmd

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom/internal/search"
	"github.com/fathom-search/fathom/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	mode    string
	persona string
	k       int
	format  string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one blended search from the command line",
		Long: `Run a query through the full pipeline: provider fan-out,
deduplication, scoring, and ratio blending.

Examples:
  fathom search "tor relay setup"
  fathom search "zero-day disclosure policy" --mode deep -k 5
  fathom search "onion services" --mode uncensored --persona raven
  fathom search "dns privacy" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Search mode: normal, deep, deeper, uncensored")
	cmd.Flags().StringVarP(&opts.persona, "persona", "p", "", "Persona issuing the query")
	cmd.Flags().IntVarP(&opts.k, "limit", "n", 0, "Number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.engine.Search(ctx, search.Request{
		Text:      query,
		Mode:      opts.mode,
		PersonaID: opts.persona,
		K:         opts.k,
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	ui.NewRenderer(cmd.OutOrStdout(), noColor).RenderResponse(resp)
	return nil
}
