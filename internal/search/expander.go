package search

import (
	"strings"

	"github.com/fathom-search/fathom/internal/text"
)

// QueryExpander widens queries with topic synonyms so lexical backends
// (the knowledge index, aggregators, scrapers) match documents that use
// different vocabulary than the user. Semantic backends receive the
// original text untouched.
type QueryExpander struct {
	synonyms      map[string][]string
	maxExpansions int
}

// QueryExpanderOption configures the query expander.
type QueryExpanderOption func(*QueryExpander)

// WithMaxExpansions sets the maximum synonyms added per query term.
func WithMaxExpansions(n int) QueryExpanderOption {
	return func(e *QueryExpander) {
		e.maxExpansions = n
	}
}

// WithCustomSynonyms adds custom synonym mappings on top of the defaults.
func WithCustomSynonyms(synonyms map[string][]string) QueryExpanderOption {
	return func(e *QueryExpander) {
		for k, v := range synonyms {
			e.synonyms[k] = append(e.synonyms[k], v...)
		}
	}
}

// NewQueryExpander creates an expander with the default synonym table.
func NewQueryExpander(opts ...QueryExpanderOption) *QueryExpander {
	e := &QueryExpander{
		synonyms:      make(map[string][]string),
		maxExpansions: 3,
	}
	for k, v := range topicSynonyms {
		e.synonyms[k] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns the query with synonym terms appended. Original terms
// come first so exact matches keep their weight; duplicates are dropped.
func (e *QueryExpander) Expand(query string) string {
	terms := text.Tokenize(query)
	if len(terms) == 0 {
		return query
	}

	seen := make(map[string]bool)
	var expanded []string
	for _, term := range terms {
		if !seen[term] {
			expanded = append(expanded, term)
			seen[term] = true
		}
	}
	for _, term := range terms {
		added := 0
		for _, syn := range e.synonyms[term] {
			if added >= e.maxExpansions {
				break
			}
			if !seen[syn] {
				expanded = append(expanded, syn)
				seen[syn] = true
				added++
			}
		}
	}
	return strings.Join(expanded, " ")
}
