package search

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/fathom-search/fathom/internal/blend"
	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/dedup"
	"github.com/fathom-search/fathom/internal/dispatch"
	fatherrors "github.com/fathom-search/fathom/internal/errors"
	"github.com/fathom-search/fathom/internal/modes"
	"github.com/fathom-search/fathom/internal/persona"
	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/score"
)

// Engine runs the full search pipeline. It is safe for concurrent use:
// all fields are set at construction and the pipeline holds no
// cross-query state outside the response cache.
type Engine struct {
	cfg       *config.Config
	registry  *modes.Registry
	personas  *persona.Store
	providers map[string]provider.Provider
	deduper   *dedup.Deduper
	scorer    *score.Scorer
	expander  *QueryExpander

	summarizer Summarizer
	cache      *expirable.LRU[string, Response]
}

// Option configures an Engine.
type Option func(*Engine)

// WithSummarizer attaches an optional result summarizer.
func WithSummarizer(s Summarizer) Option {
	return func(e *Engine) {
		e.summarizer = s
	}
}

// WithClock overrides the scorer's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.scorer = score.NewScorer(e.cfg, now)
	}
}

// NewEngine wires the pipeline from configuration and a built provider
// set.
func NewEngine(cfg *config.Config, providers map[string]provider.Provider, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		registry:  modes.NewRegistry(cfg),
		personas:  persona.NewStore(cfg),
		providers: providers,
		deduper:   dedup.New(cfg.Search.TitleSimilarity, cfg.Search.ContentSimilarity),
		scorer:    score.NewScorer(cfg, nil),
		expander:  NewQueryExpander(),
	}
	if cfg.Search.CacheSize > 0 {
		ttl := time.Duration(cfg.Search.CacheTTLSeconds) * time.Second
		e.cache = expirable.NewLRU[string, Response](cfg.Search.CacheSize, nil, ttl)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search executes one request through the pipeline. Mode and persona
// validation happen before any provider is called.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return nil, fatherrors.InvalidQuery("query text must not be empty")
	}
	if req.K <= 0 {
		req.K = e.cfg.Search.DefaultK
	}
	if req.K > e.cfg.Search.MaxK {
		req.K = e.cfg.Search.MaxK
	}
	if req.Mode == "" {
		req.Mode = modes.DefaultMode
	}

	mode, err := e.registry.Resolve(req.Mode, req.PersonaID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(req)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			cached.Cached = true
			slog.Debug("cache hit",
				slog.String("mode", req.Mode),
				slog.String("session", req.SessionID))
			return &cached, nil
		}
	}

	q := provider.Query{Text: req.Text}
	if mode.QueryExpansion {
		q.Expanded = e.expander.Expand(req.Text)
	}

	active := make([]provider.Provider, 0, len(mode.Providers))
	for _, id := range mode.Providers {
		p, ok := e.providers[id]
		if !ok {
			slog.Warn("mode references unbuilt provider", slog.String("provider", id))
			continue
		}
		active = append(active, p)
	}

	raw, statuses, err := dispatch.Dispatch(ctx, active, q, dispatch.Options{
		ProviderTimeout: mode.ProviderTimeout(),
		OverallDeadline: mode.OverallDeadline(),
	})
	if err != nil {
		return nil, err
	}

	deduped := e.deduper.Dedupe(raw)
	scored := e.scorer.ScoreAll(deduped, q, e.personas.Get(req.PersonaID))
	blended := blend.Blend(scored, mode.BlendRatio, req.K)

	resp := &Response{
		RequestID:         uuid.NewString(),
		Mode:              req.Mode,
		Results:           toResults(blended),
		DegradedProviders: dispatch.Degraded(statuses),
	}

	if e.summarizer != nil && len(resp.Results) > 0 {
		resp.Summary = e.summarize(ctx, req.Text, resp.Results)
	}
	resp.ElapsedMs = time.Since(start).Milliseconds()

	slog.Info("search completed",
		slog.String("request_id", resp.RequestID),
		slog.String("mode", req.Mode),
		slog.String("session", req.SessionID),
		slog.Int("raw", len(raw)),
		slog.Int("deduped", len(deduped)),
		slog.Int("returned", len(resp.Results)),
		slog.Int("degraded", len(resp.DegradedProviders)),
		slog.Int64("elapsed_ms", resp.ElapsedMs))

	if e.cache != nil {
		e.cache.Add(key, *resp)
	}
	return resp, nil
}

// Modes lists the registered mode names.
func (e *Engine) Modes() []string {
	return e.registry.Names()
}

// ModeConfig returns a mode's policy for inspection.
func (e *Engine) ModeConfig(name string) (config.Mode, bool) {
	return e.registry.Get(name)
}

// summarize runs the summarizer under its own budget. Failures drop the
// summary, never the response.
func (e *Engine) summarize(ctx context.Context, query string, results []Result) string {
	sctx, cancel := context.WithTimeout(ctx, e.cfg.Summarizer.Timeout())
	defer cancel()

	text, err := e.summarizer.Summarize(sctx, query, results)
	if err != nil {
		slog.Warn("summarizer failed, omitting summary", slog.String("error", err.Error()))
		return ""
	}
	return text
}

// cacheKey identifies a cacheable request. Session is excluded: two
// sessions asking the same question share the answer.
func cacheKey(req Request) string {
	return req.Mode + "|" + req.PersonaID + "|" + strconv.Itoa(req.K) + "|" + strings.ToLower(req.Text)
}

func toResults(blended []score.ScoredResult) []Result {
	results := make([]Result, 0, len(blended))
	for _, r := range blended {
		results = append(results, Result{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Snippet,
			Score:       r.Score,
			SourceClass: string(r.Class),
			Provider:    r.ProviderID,
		})
	}
	return results
}
