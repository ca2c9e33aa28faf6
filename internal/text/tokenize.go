// Package text provides the shared tokenization used by deduplication,
// scoring, and the internal knowledge index.
package text

import (
	"strings"
	"unicode"
)

// Stop words filtered before lexical matching. Kept small: only words so
// frequent that they carry no ranking signal for web/knowledge queries.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {}, "or": {}, "what": {}, "how": {}, "why": {},
}

// Tokenize splits text into lowercase word tokens, trimming surrounding
// punctuation. Empty tokens are dropped.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		cleaned := strings.ToLower(strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

// FilterStopWords removes stop words from a token list.
func FilterStopWords(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := stopWords[tok]; !ok {
			filtered = append(filtered, tok)
		}
	}
	return filtered
}

// TokenSet returns the set of tokens in s.
func TokenSet(s string) map[string]struct{} {
	tokens := Tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// QueryTokens tokenizes a query and removes stop words.
// This is the canonical preprocessing for lexical matching.
func QueryTokens(s string) []string {
	return FilterStopWords(Tokenize(s))
}
