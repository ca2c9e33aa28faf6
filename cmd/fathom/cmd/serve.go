package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var transport string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search engine over MCP",
		Long: `Start the MCP server exposing the search and list_modes tools.

With the stdio transport (default), logs go to file only; stdout
carries the protocol stream.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), transport, addr)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport: stdio (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "localhost:4780", "Listen address for network transports")

	return cmd
}

func runServe(ctx context.Context, transport, addr string) error {
	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if transport == "" {
		transport = a.cfg.Server.Transport
	}

	srv, err := mcp.NewServer(a.engine, a.cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("fathom serving", slog.String("transport", transport))
	return srv.Serve(ctx, transport, addr)
}
