package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/persona"
	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/text"
)

var testNow = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func newTestScorer() *Scorer {
	return NewScorer(config.NewConfig(), func() time.Time { return testNow })
}

func TestScore_Relevance(t *testing.T) {
	s := newTestScorer()
	tokens := text.QueryTokens("go concurrency patterns")

	full := provider.RawResult{Title: "Go concurrency patterns", Snippet: "channels and goroutines"}
	partial := provider.RawResult{Title: "Go generics", Snippet: "type parameters"}
	none := provider.RawResult{Title: "Sourdough", Snippet: "baking"}

	assert.Greater(t, s.Score(full, tokens, nil), s.Score(partial, tokens, nil))
	assert.Greater(t, s.Score(partial, tokens, nil), s.Score(none, tokens, nil))
}

func TestScore_FreshnessDecay(t *testing.T) {
	s := newTestScorer()
	tokens := text.QueryTokens("topic")

	recent := testNow.AddDate(0, 0, -1)
	old := testNow.AddDate(0, 0, -120)

	newer := provider.RawResult{Title: "topic", PublishedAt: &recent}
	older := provider.RawResult{Title: "topic", PublishedAt: &old}
	assert.Greater(t, s.Score(newer, tokens, nil), s.Score(older, tokens, nil))
}

func TestScore_UnknownAgeGetsNeutralFreshness(t *testing.T) {
	s := newTestScorer()
	assert.InDelta(t, 0.5, s.freshness(nil), 1e-9)

	// An undated record must outscore a very stale dated one, all else equal.
	tokens := text.QueryTokens("topic")
	stale := testNow.AddDate(-3, 0, 0)
	undated := provider.RawResult{Title: "topic"}
	dated := provider.RawResult{Title: "topic", PublishedAt: &stale}
	assert.Greater(t, s.Score(undated, tokens, nil), s.Score(dated, tokens, nil))
}

func TestScore_Credibility(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Providers = []config.Provider{
		{ID: "high", Class: "web", Credibility: 0.9},
		{ID: "low", Class: "web", Credibility: 0.2},
	}
	s := NewScorer(cfg, func() time.Time { return testNow })
	tokens := text.QueryTokens("topic")

	trusted := provider.RawResult{ProviderID: "high", Title: "topic"}
	sketchy := provider.RawResult{ProviderID: "low", Title: "topic"}
	assert.Greater(t, s.Score(trusted, tokens, nil), s.Score(sketchy, tokens, nil))
}

func TestScore_PersonaBoostIsCapped(t *testing.T) {
	cfg := config.NewConfig()
	s := NewScorer(cfg, func() time.Time { return testNow })
	store := persona.NewStore(cfg)
	raven := store.Get("raven")
	tokens := text.QueryTokens("privacy tools")

	r := provider.RawResult{Title: "Privacy tools compared", Snippet: "opsec basics"}
	boosted := s.Score(r, tokens, raven)
	plain := s.Score(r, tokens, nil)

	assert.InDelta(t, cfg.Search.Weights.Persona, boosted-plain, 1e-9)
	assert.InDelta(t, plain, s.Score(r, tokens, store.Get("default")), 1e-9,
		"personas with no matching interests get no boost")
}

func TestScore_ClampedAndDeterministic(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Providers = []config.Provider{{ID: "p", Class: "web", Credibility: 1.0}}
	s := NewScorer(cfg, func() time.Time { return testNow })
	store := persona.NewStore(cfg)
	raven := store.Get("raven")
	tokens := text.QueryTokens("privacy")

	fresh := testNow
	r := provider.RawResult{ProviderID: "p", Title: "privacy", Snippet: "privacy opsec", PublishedAt: &fresh}

	first := s.Score(r, tokens, raven)
	assert.LessOrEqual(t, first, 1.0)
	assert.GreaterOrEqual(t, first, 0.0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Score(r, tokens, raven))
	}
}

func TestScoreAll_DropsUnscorableRecords(t *testing.T) {
	s := newTestScorer()

	records := []provider.RawResult{
		{ProviderID: "knowledge", Title: "Kept", Snippet: "has content"},
		{ProviderID: "privacy-web", URL: "https://example.org/empty"},
	}
	scored := s.ScoreAll(records, provider.Query{Text: "kept"}, nil)
	require.Len(t, scored, 1)
	assert.Equal(t, "Kept", scored[0].Title)
	assert.Equal(t, provider.ClassInternal, scored[0].Class)
}

func TestScoreAll_AttachesSourceClass(t *testing.T) {
	s := newTestScorer()
	records := []provider.RawResult{
		{ProviderID: "knowledge", Title: "internal doc"},
		{ProviderID: "privacy-web", Title: "web page", URL: "https://example.org"},
	}
	scored := s.ScoreAll(records, provider.Query{Text: "doc"}, nil)
	require.Len(t, scored, 2)
	assert.Equal(t, provider.ClassInternal, scored[0].Class)
	assert.Equal(t, provider.ClassWeb, scored[1].Class)
}
