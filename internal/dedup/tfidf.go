package dedup

import (
	"math"

	"github.com/fathom-search/fathom/internal/text"
)

// tfidfVector is a sparse term-weight vector with a precomputed norm.
type tfidfVector struct {
	weights map[string]float64
	norm    float64
}

// buildTFIDF computes one TF-IDF vector per document over the shared
// corpus vocabulary. Stop words are filtered before counting so boilerplate
// terms do not inflate similarity.
func buildTFIDF(docs []string) []tfidfVector {
	n := len(docs)
	tokenized := make([][]string, n)
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := text.FilterStopWords(text.Tokenize(doc))
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	vectors := make([]tfidfVector, n)
	for i, tokens := range tokenized {
		tf := make(map[string]float64, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		weights := make(map[string]float64, len(tf))
		var normSq float64
		for tok, count := range tf {
			// Smoothed IDF keeps terms present in every document from
			// zeroing out, which matters for tiny corpora.
			idf := math.Log(float64(n)/float64(df[tok])) + 1
			w := (count / float64(len(tokens))) * idf
			weights[tok] = w
			normSq += w * w
		}
		vectors[i] = tfidfVector{weights: weights, norm: math.Sqrt(normSq)}
	}
	return vectors
}

// cosine returns the cosine similarity of two vectors, 0 when either is
// empty.
func cosine(a, b tfidfVector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	small, large := a, b
	if len(b.weights) < len(a.weights) {
		small, large = b, a
	}
	var dot float64
	for tok, w := range small.weights {
		if lw, ok := large.weights[tok]; ok {
			dot += w * lw
		}
	}
	return dot / (a.norm * b.norm)
}
