// Package score ranks deduplicated results with a composite of query
// relevance, freshness decay, source credibility, and persona interest.
package score

import (
	"log/slog"
	"math"
	"time"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/persona"
	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/text"
)

// ScoredResult is a surviving record with its composite score and the
// source class of the provider that produced it.
type ScoredResult struct {
	provider.RawResult
	Class provider.SourceClass
	Score float64
}

// Scorer computes composite scores. All inputs are fixed at
// construction, so identical (record, query, persona) triples always
// score identically.
type Scorer struct {
	weights          config.ScoringWeights
	lambda           float64
	neutralFreshness float64

	credibility map[string]float64
	classes     map[string]provider.SourceClass

	// now is injectable so freshness decay is testable.
	now func() time.Time
}

// NewScorer builds a scorer from configuration. A nil now defaults to
// time.Now.
func NewScorer(cfg *config.Config, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	credibility := make(map[string]float64, len(cfg.Providers))
	classes := make(map[string]provider.SourceClass, len(cfg.Providers))
	for _, p := range cfg.Providers {
		credibility[p.ID] = p.Credibility
		classes[p.ID] = provider.SourceClass(p.Class)
	}
	return &Scorer{
		weights:          cfg.Search.Weights,
		lambda:           cfg.Search.FreshnessLambda,
		neutralFreshness: cfg.Search.NeutralFreshness,
		credibility:      credibility,
		classes:          classes,
		now:              now,
	}
}

// ScoreAll scores every record against the query and persona. Records
// missing both title and snippet cannot be ranked and are dropped with a
// warning.
func (s *Scorer) ScoreAll(records []provider.RawResult, q provider.Query, prof *persona.Profile) []ScoredResult {
	queryTokens := text.QueryTokens(q.Text)
	scored := make([]ScoredResult, 0, len(records))
	for _, r := range records {
		if r.Title == "" && r.Snippet == "" {
			slog.Warn("dropping unscorable record",
				slog.String("provider", r.ProviderID),
				slog.String("url", r.URL))
			continue
		}
		scored = append(scored, ScoredResult{
			RawResult: r,
			Class:     s.classes[r.ProviderID],
			Score:     s.Score(r, queryTokens, prof),
		})
	}
	return scored
}

// Score computes the composite score for one record, clamped to [0,1].
func (s *Scorer) Score(r provider.RawResult, queryTokens []string, prof *persona.Profile) float64 {
	docTokens := text.TokenSet(r.Title + " " + r.Snippet)

	composite := s.weights.Relevance*relevance(queryTokens, docTokens) +
		s.weights.Freshness*s.freshness(r.PublishedAt) +
		s.weights.Credibility*s.credibility[r.ProviderID]

	if prof != nil && prof.Matches(docTokens) {
		composite += s.weights.Persona
	}
	return clamp01(composite)
}

// relevance is the fraction of query terms found in the record's title
// and snippet.
func relevance(queryTokens []string, docTokens map[string]struct{}) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range queryTokens {
		if _, ok := docTokens[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// freshness decays exponentially with age in days. Records without a
// timestamp get the neutral constant rather than zero, so undated
// internal records are not pushed out of the top-K by default.
func (s *Scorer) freshness(publishedAt *time.Time) float64 {
	if publishedAt == nil {
		return s.neutralFreshness
	}
	ageDays := s.now().Sub(*publishedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-s.lambda * ageDays)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
