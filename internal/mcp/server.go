package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/search"
	"github.com/fathom-search/fathom/pkg/version"
)

// Server bridges MCP clients to the search engine.
type Server struct {
	mcp    *mcp.Server
	engine *search.Engine
	config *config.Config
	logger *slog.Logger
}

// SearchInput defines the input schema for the search tool.
type SearchInput struct {
	Query     string `json:"query" jsonschema:"the search query to execute"`
	Mode      string `json:"mode,omitempty" jsonschema:"search mode: normal, deep, deeper, or uncensored; default normal"`
	PersonaID string `json:"persona_id,omitempty" jsonschema:"persona issuing the query; affects ranking and mode access"`
	SessionID string `json:"session_id,omitempty" jsonschema:"opaque session correlation token"`
	K         int    `json:"k,omitempty" jsonschema:"number of results to return, default 10"`
}

// SearchOutput defines the output schema for the search tool.
type SearchOutput struct {
	RequestID         string         `json:"request_id" jsonschema:"unique id of this search"`
	Results           []ResultOutput `json:"results" jsonschema:"ranked blended results"`
	DegradedProviders []string       `json:"degraded_providers,omitempty" jsonschema:"providers that timed out or failed"`
	ElapsedMs         int64          `json:"elapsed_ms" jsonschema:"total search time in milliseconds"`
	Summary           string         `json:"summary,omitempty" jsonschema:"optional prose summary of the results"`
}

// ResultOutput defines a single search result.
type ResultOutput struct {
	Title       string  `json:"title" jsonschema:"result title"`
	URL         string  `json:"url,omitempty" jsonschema:"result link; absent for internal knowledge records"`
	Snippet     string  `json:"snippet" jsonschema:"content excerpt"`
	Score       float64 `json:"score" jsonschema:"composite relevance score between 0 and 1"`
	SourceClass string  `json:"source_class" jsonschema:"internal or web"`
	Provider    string  `json:"provider" jsonschema:"id of the provider that returned this record"`
}

// ListModesInput defines the (empty) input schema for list_modes.
type ListModesInput struct{}

// ListModesOutput defines the output schema for list_modes.
type ListModesOutput struct {
	Modes []ModeOutput `json:"modes" jsonschema:"available search modes"`
}

// ModeOutput describes one mode's policy.
type ModeOutput struct {
	Name              string   `json:"name" jsonschema:"mode name"`
	Providers         []string `json:"providers" jsonschema:"providers queried in this mode"`
	BlendRatio        float64  `json:"blend_ratio" jsonschema:"target share of internal records in results"`
	OverallDeadlineMs int      `json:"overall_deadline_ms" jsonschema:"latency budget in milliseconds"`
	QueryExpansion    bool     `json:"query_expansion" jsonschema:"whether synonym expansion is applied"`
	RequiresPersona   string   `json:"requires_persona,omitempty" jsonschema:"persona required to use this mode"`
}

// NewServer creates the MCP server and registers its tools.
func NewServer(engine *search.Engine, cfg *config.Config) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		engine: engine,
		config: cfg,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "fathom",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Search the internal knowledge index and multiple web backends in parallel, returning a deduplicated, scored, ratio-blended result list. Pick a mode to trade latency for coverage: normal (fast), deep, deeper (adds scraping), uncensored (persona-gated).",
	}, s.mcpSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_modes",
		Description: "List the available search modes with their provider sets, latency budgets, and blend ratios. Call this before search when unsure which mode fits.",
	}, s.mcpListModesHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", 2))
}

// mcpSearchHandler is the MCP SDK handler for the search tool.
func (s *Server) mcpSearchHandler(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query parameter is required")
	}

	resp, err := s.engine.Search(ctx, search.Request{
		Text:      input.Query,
		Mode:      input.Mode,
		PersonaID: input.PersonaID,
		SessionID: input.SessionID,
		K:         input.K,
	})
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}

	output := SearchOutput{
		RequestID:         resp.RequestID,
		Results:           make([]ResultOutput, 0, len(resp.Results)),
		DegradedProviders: resp.DegradedProviders,
		ElapsedMs:         resp.ElapsedMs,
		Summary:           resp.Summary,
	}
	for _, r := range resp.Results {
		output.Results = append(output.Results, ResultOutput{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Snippet,
			Score:       r.Score,
			SourceClass: r.SourceClass,
			Provider:    r.Provider,
		})
	}
	return nil, output, nil
}

// mcpListModesHandler is the MCP SDK handler for the list_modes tool.
func (s *Server) mcpListModesHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ListModesInput) (
	*mcp.CallToolResult,
	ListModesOutput,
	error,
) {
	output := ListModesOutput{}
	for _, name := range s.engine.Modes() {
		mode, ok := s.engine.ModeConfig(name)
		if !ok {
			continue
		}
		output.Modes = append(output.Modes, ModeOutput{
			Name:              name,
			Providers:         mode.Providers,
			BlendRatio:        mode.BlendRatio,
			OverallDeadlineMs: mode.OverallDeadlineMs,
			QueryExpansion:    mode.QueryExpansion,
			RequiresPersona:   mode.RequiresPersona,
		})
	}
	return nil, output, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	s.logger.Info("starting MCP server",
		slog.String("transport", transport),
		slog.String("addr", addr))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped")
		return nil
	case "http", "sse":
		return fmt.Errorf("transport %s not yet implemented", transport)
	default:
		return fmt.Errorf("unknown transport: %s", transport)
	}
}
