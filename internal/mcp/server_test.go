package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom/internal/config"
	fatherrors "github.com/fathom-search/fathom/internal/errors"
	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/search"
)

type staticProvider struct {
	id      string
	class   provider.SourceClass
	results []provider.RawResult
}

func (p *staticProvider) ID() string                  { return p.id }
func (p *staticProvider) Class() provider.SourceClass { return p.class }
func (p *staticProvider) Search(ctx context.Context, q provider.Query) ([]provider.RawResult, error) {
	return p.results, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Search.CacheSize = 0

	providers := map[string]provider.Provider{
		"knowledge": &staticProvider{id: "knowledge", class: provider.ClassInternal, results: []provider.RawResult{
			{ProviderID: "knowledge", Title: "Internal doc", Snippet: "stored knowledge about relays", ProviderRank: 1},
		}},
		"privacy-web": &staticProvider{id: "privacy-web", class: provider.ClassWeb, results: []provider.RawResult{
			{ProviderID: "privacy-web", URL: "https://example.org/relays", Title: "Relay guide", Snippet: "running relays on the public internet", ProviderRank: 1},
		}},
	}

	srv, err := NewServer(search.NewEngine(cfg, providers), cfg)
	require.NoError(t, err)
	return srv
}

func TestNewServer_RequiresEngine(t *testing.T) {
	_, err := NewServer(nil, config.NewConfig())
	require.Error(t, err)
}

func TestSearchHandler(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{Query: "relays"})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	assert.NotEmpty(t, out.RequestID)
	assert.Empty(t, out.DegradedProviders)
	for _, r := range out.Results {
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.SourceClass)
	}
}

func TestSearchHandler_EmptyQuery(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{})
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestSearchHandler_GatedMode(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Query: "relays",
		Mode:  "uncensored",
	})
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code, "persona gate maps to invalid params")
}

func TestListModesHandler(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.mcpListModesHandler(context.Background(), nil, ListModesInput{})
	require.NoError(t, err)
	require.Len(t, out.Modes, 4)

	names := make([]string, 0, len(out.Modes))
	for _, m := range out.Modes {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"deep", "deeper", "normal", "uncensored"}, names)

	for _, m := range out.Modes {
		if m.Name == "uncensored" {
			assert.Equal(t, "raven", m.RequiresPersona)
		}
	}
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil))

	allDown := fatherrors.AllProvidersUnavailable(nil)
	assert.Equal(t, ErrCodeSearchUnavailable, MapError(allDown).Code)

	unknownMode := fatherrors.UnknownMode("warp")
	assert.Equal(t, ErrCodeInvalidParams, MapError(unknownMode).Code)

	gated := fatherrors.PersonaNotAuthorized("uncensored", "default")
	assert.Equal(t, ErrCodeInvalidParams, MapError(gated).Code)

	assert.Equal(t, ErrCodeTimeout, MapError(context.DeadlineExceeded).Code)
}
