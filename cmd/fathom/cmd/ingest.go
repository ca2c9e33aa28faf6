package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/provider"
)

func newIngestCmd() *cobra.Command {
	var backend string
	var indexPath string

	cmd := &cobra.Command{
		Use:   "ingest <corpus.jsonl>",
		Short: "Ingest a JSONL corpus into the knowledge index",
		Long: `Build or extend the on-disk knowledge index from a JSONL corpus,
one document per line: {"id", "title", "body", "url", "published_at"}.

The search and serve commands pick the index up through the knowledge
section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Knowledge.Backend = backend
			}
			if indexPath != "" {
				cfg.Knowledge.Path = indexPath
			}
			if cfg.Knowledge.Path == "" {
				return fmt.Errorf("an on-disk index path is required: set --index or knowledge.path in config")
			}

			kp, err := provider.NewKnowledgeProvider("knowledge", cfg.Knowledge.Backend, cfg.Knowledge.Path)
			if err != nil {
				return err
			}
			defer kp.Close()

			if err := kp.LoadCorpus(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %s: %d documents in %s index %s\n",
				args[0], kp.Count(), cfg.Knowledge.Backend, cfg.Knowledge.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Index backend: bleve or sqlite (default from config)")
	cmd.Flags().StringVar(&indexPath, "index", "", "Index path (default from config)")
	return cmd
}
