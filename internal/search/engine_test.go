package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom/internal/config"
	fatherrors "github.com/fathom-search/fathom/internal/errors"
	"github.com/fathom-search/fathom/internal/provider"
)

type stubProvider struct {
	id      string
	class   provider.SourceClass
	results []provider.RawResult
	err     error
	delay   time.Duration
	calls   atomic.Int64
}

func (s *stubProvider) ID() string                  { return s.id }
func (s *stubProvider) Class() provider.SourceClass { return s.class }

func (s *stubProvider) Search(ctx context.Context, q provider.Query) ([]provider.RawResult, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// stubSnippets are pairwise-dissimilar so the content dedup pass leaves
// stub results alone.
var stubSnippets = []string{
	"relay bandwidth measurements drive consensus weighting",
	"bridge distribution strategies serve censored networks",
	"guard rotation intervals balance exposure against churn",
	"exit policies shape abuse complaint volume",
	"directory authorities run hourly voting rounds",
	"descriptor publication uses distributed hash rings",
	"pluggable transports obfuscate traffic signatures",
	"congestion control changed between stable releases",
	"lexical indexes rank documents through term statistics",
	"vector stores trade recall against memory footprint",
	"crawl schedulers respect per-domain politeness budgets",
	"snippet extraction prefers page metadata over body text",
	"freshness decay demotes stale publications gradually",
	"credibility weights encode editorial trust levels",
	"ratio enforcement fills quotas per source bucket",
	"response caches absorb repeated identical queries",
}

func stubResults(id, host string, n int) []provider.RawResult {
	offset := 0
	if host != "kb" {
		offset = 8
	}
	out := make([]provider.RawResult, n)
	for i := range out {
		out[i] = provider.RawResult{
			ProviderID:   id,
			URL:          "https://" + host + ".example/" + string(rune('a'+i)),
			Title:        host + " result " + string(rune('a'+i)),
			Snippet:      stubSnippets[(offset+i)%len(stubSnippets)],
			ProviderRank: i + 1,
		}
	}
	return out
}

// testEngine wires an engine over stub providers for the normal mode's
// provider pair.
func testEngine(t *testing.T, opts ...Option) (*Engine, *stubProvider, *stubProvider) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Search.CacheSize = 0

	knowledge := &stubProvider{id: "knowledge", class: provider.ClassInternal, results: stubResults("knowledge", "kb", 8)}
	web := &stubProvider{id: "privacy-web", class: provider.ClassWeb, results: stubResults("privacy-web", "web", 8)}

	providers := map[string]provider.Provider{
		"knowledge":   knowledge,
		"privacy-web": web,
	}
	return NewEngine(cfg, providers, opts...), knowledge, web
}

func TestSearch_FullPipeline(t *testing.T) {
	e, _, _ := testEngine(t)

	resp, err := e.Search(context.Background(), Request{Text: "query topic", K: 10})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "normal", resp.Mode)
	assert.Len(t, resp.Results, 10)
	assert.Empty(t, resp.DegradedProviders)
	assert.GreaterOrEqual(t, resp.ElapsedMs, int64(0))

	// Normal mode ratio 0.6 with both buckets full: exactly 6 internal.
	internal := 0
	for _, r := range resp.Results {
		if r.SourceClass == "internal" {
			internal++
		}
	}
	assert.Equal(t, 6, internal)
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	e, kb, _ := testEngine(t)

	_, err := e.Search(context.Background(), Request{Text: "   "})
	require.Error(t, err)
	assert.Equal(t, fatherrors.ErrCodeInvalidQuery, fatherrors.GetCode(err))
	assert.Zero(t, kb.calls.Load())
}

func TestSearch_PersonaGateBeforeDispatch(t *testing.T) {
	e, kb, web := testEngine(t)

	_, err := e.Search(context.Background(), Request{Text: "query", Mode: "uncensored", PersonaID: "default"})
	require.Error(t, err)
	assert.Equal(t, fatherrors.ErrCodePersonaNotAuthorized, fatherrors.GetCode(err))
	assert.Zero(t, kb.calls.Load(), "no provider is called for a gated request")
	assert.Zero(t, web.calls.Load())
}

func TestSearch_UnknownMode(t *testing.T) {
	e, _, _ := testEngine(t)

	_, err := e.Search(context.Background(), Request{Text: "query", Mode: "warp"})
	require.Error(t, err)
	assert.Equal(t, fatherrors.ErrCodeUnknownMode, fatherrors.GetCode(err))
}

func TestSearch_DegradedProviderStillAnswers(t *testing.T) {
	e, _, web := testEngine(t)
	web.err = provider.ErrUnreachable

	resp, err := e.Search(context.Background(), Request{Text: "query topic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"privacy-web"}, resp.DegradedProviders)
	assert.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.Equal(t, "knowledge", r.Provider)
	}
}

func TestSearch_AllProvidersDown(t *testing.T) {
	e, kb, web := testEngine(t)
	kb.err = errors.New("index corrupt")
	web.err = provider.ErrUnreachable

	_, err := e.Search(context.Background(), Request{Text: "query"})
	require.Error(t, err)
	assert.Equal(t, fatherrors.ErrCodeAllProvidersDown, fatherrors.GetCode(err))
}

func TestSearch_DefaultAndClampedK(t *testing.T) {
	e, _, _ := testEngine(t)

	resp, err := e.Search(context.Background(), Request{Text: "query topic"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 10, "k defaults to the configured value")

	resp, err = e.Search(context.Background(), Request{Text: "query topic", K: 3})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
}

func TestSearch_DuplicateURLsCollapse(t *testing.T) {
	e, kb, web := testEngine(t)
	kb.results = []provider.RawResult{
		{ProviderID: "knowledge", URL: "https://shared.example/doc", Title: "Shared doc", Snippet: "query topic", ProviderRank: 2},
	}
	web.results = []provider.RawResult{
		{ProviderID: "privacy-web", URL: "https://shared.example/doc", Title: "Shared doc web copy", Snippet: "query topic", ProviderRank: 1},
	}

	resp, err := e.Search(context.Background(), Request{Text: "query topic"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Shared doc web copy", resp.Results[0].Title, "lowest provider rank wins the group")
}

type stubSummarizer struct {
	text string
	err  error
}

func (s *stubSummarizer) Summarize(ctx context.Context, query string, results []Result) (string, error) {
	return s.text, s.err
}

func TestSearch_SummaryIncluded(t *testing.T) {
	e, _, _ := testEngine(t, WithSummarizer(&stubSummarizer{text: "Results agree on the topic."}))

	resp, err := e.Search(context.Background(), Request{Text: "query topic"})
	require.NoError(t, err)
	assert.Equal(t, "Results agree on the topic.", resp.Summary)
}

func TestSearch_SummarizerFailureIsRecovered(t *testing.T) {
	e, _, _ := testEngine(t, WithSummarizer(&stubSummarizer{err: errors.New("model offline")}))

	resp, err := e.Search(context.Background(), Request{Text: "query topic"})
	require.NoError(t, err, "a failed summarizer never fails the response")
	assert.Empty(t, resp.Summary)
	assert.NotEmpty(t, resp.Results)
}

func TestSearch_CacheHit(t *testing.T) {
	cfg := config.NewConfig()
	kb := &stubProvider{id: "knowledge", class: provider.ClassInternal, results: stubResults("knowledge", "kb", 4)}
	web := &stubProvider{id: "privacy-web", class: provider.ClassWeb, results: stubResults("privacy-web", "web", 4)}
	e := NewEngine(cfg, map[string]provider.Provider{"knowledge": kb, "privacy-web": web})

	first, err := e.Search(context.Background(), Request{Text: "query topic"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := e.Search(context.Background(), Request{Text: "Query Topic"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.RequestID, second.RequestID)
	assert.Equal(t, int64(1), kb.calls.Load(), "the cached request never reaches providers")

	// A different k is a different cache entry.
	third, err := e.Search(context.Background(), Request{Text: "query topic", K: 3})
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

func TestSearch_ElapsedBoundedByDeadline(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Search.CacheSize = 0
	cfg.Modes["normal"] = config.Mode{
		Providers:         []string{"knowledge", "privacy-web"},
		ProviderTimeoutMs: 5000,
		OverallDeadlineMs: 80,
		BlendRatio:        0.6,
	}
	kb := &stubProvider{id: "knowledge", class: provider.ClassInternal, results: stubResults("knowledge", "kb", 2)}
	slow := &stubProvider{id: "privacy-web", class: provider.ClassWeb, delay: 3 * time.Second}
	e := NewEngine(cfg, map[string]provider.Provider{"knowledge": kb, "privacy-web": slow})

	resp, err := e.Search(context.Background(), Request{Text: "query topic"})
	require.NoError(t, err)
	assert.Less(t, resp.ElapsedMs, int64(1000), "elapsed stays near the overall deadline")
	assert.Equal(t, []string{"privacy-web"}, resp.DegradedProviders)
}
