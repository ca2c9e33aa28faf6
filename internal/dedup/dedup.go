// Package dedup collapses near-duplicate results across providers with
// three passes of increasing cost: exact URL match, title token overlap,
// and TF-IDF content similarity. Matches are merged transitively through
// a union-find structure, so if A matches B and B matches C all three
// collapse into one group.
package dedup

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/text"
)

// Deduper holds the similarity thresholds for the fuzzy passes.
type Deduper struct {
	// TitleThreshold is the minimum Jaccard similarity of title token
	// sets for two records to be considered the same story.
	TitleThreshold float64

	// ContentThreshold is the minimum TF-IDF cosine similarity of
	// snippets for two records to be considered the same content.
	ContentThreshold float64
}

// New returns a Deduper with the given thresholds.
func New(titleThreshold, contentThreshold float64) *Deduper {
	return &Deduper{
		TitleThreshold:   titleThreshold,
		ContentThreshold: contentThreshold,
	}
}

// mergePass identifies which pass joined two records; it selects the
// survivor rule when groups merge.
type mergePass int

const (
	passURL mergePass = iota + 1
	passTitle
	passContent
)

// unionFind tracks duplicate groups. Each root carries the index of the
// record currently chosen to represent the group.
type unionFind struct {
	parent   []int
	exemplar []int
	records  []provider.RawResult
}

func newUnionFind(records []provider.RawResult) *unionFind {
	uf := &unionFind{
		parent:   make([]int, len(records)),
		exemplar: make([]int, len(records)),
		records:  records,
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.exemplar[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// union merges the groups of i and j. The surviving exemplar is chosen
// by the rule of the pass that caused the merge.
func (uf *unionFind) union(i, j int, pass mergePass) {
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return
	}
	winner := uf.pickExemplar(uf.exemplar[ri], uf.exemplar[rj], pass)
	// Attach by index order so find paths stay deterministic.
	if rj < ri {
		ri, rj = rj, ri
	}
	uf.parent[rj] = ri
	uf.exemplar[ri] = winner
}

// pickExemplar decides which of two records represents the merged group.
// URL duplicates keep the better-ranked record, title duplicates the
// fuller title, content duplicates the fuller snippet. Ties keep the
// earlier record.
func (uf *unionFind) pickExemplar(a, b int, pass mergePass) int {
	ra, rb := uf.records[a], uf.records[b]
	switch pass {
	case passURL:
		if rb.ProviderRank < ra.ProviderRank {
			return b
		}
		if ra.ProviderRank < rb.ProviderRank {
			return a
		}
	case passTitle:
		if len(rb.Title) > len(ra.Title) {
			return b
		}
		if len(ra.Title) > len(rb.Title) {
			return a
		}
	case passContent:
		if len(rb.Snippet) > len(ra.Snippet) {
			return b
		}
		if len(ra.Snippet) > len(rb.Snippet) {
			return a
		}
	}
	if b < a {
		return b
	}
	return a
}

// Dedupe collapses duplicates and returns the surviving records in
// input order. Input is not modified.
func (d *Deduper) Dedupe(records []provider.RawResult) []provider.RawResult {
	if len(records) < 2 {
		return append([]provider.RawResult(nil), records...)
	}

	uf := newUnionFind(records)

	// Pass 1: exact match on the normalized URL.
	byURL := make(map[string]int, len(records))
	for i, r := range records {
		key := NormalizeURL(r.URL)
		if key == "" {
			continue
		}
		if first, ok := byURL[key]; ok {
			uf.union(first, i, passURL)
		} else {
			byURL[key] = i
		}
	}

	// Pass 2: Jaccard similarity of title token sets.
	titleSets := make([]map[string]struct{}, len(records))
	for i, r := range records {
		titleSets[i] = text.TokenSet(r.Title)
	}
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if jaccard(titleSets[i], titleSets[j]) >= d.TitleThreshold {
				uf.union(i, j, passTitle)
			}
		}
	}

	// Pass 3: TF-IDF cosine similarity of snippets.
	snippets := make([]string, len(records))
	for i, r := range records {
		snippets[i] = r.Snippet
	}
	vectors := buildTFIDF(snippets)
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if cosine(vectors[i], vectors[j]) >= d.ContentThreshold {
				uf.union(i, j, passContent)
			}
		}
	}

	kept := make([]provider.RawResult, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	for i := range records {
		root := uf.find(i)
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		kept = append(kept, records[uf.exemplar[root]])
	}

	if len(kept) < len(records) {
		slog.Debug("deduplicated results",
			slog.Int("in", len(records)),
			slog.Int("out", len(kept)))
	}
	return kept
}

// NormalizeURL canonicalizes a URL for exact duplicate detection:
// lowercase scheme and host, fragment and default port stripped, trailing
// slash trimmed. Unparseable URLs normalize to themselves so they still
// match byte-identical copies.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// jaccard is |A∩B| / |A∪B|; empty sets are similar to nothing.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
