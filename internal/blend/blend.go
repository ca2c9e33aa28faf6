// Package blend enforces the per-mode ratio of internal to web records
// in the returned top-K. The ratio is a selection policy: quotas are
// filled per source class first, then the picks are merged by score for
// presentation.
package blend

import (
	"math"
	"sort"

	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/score"
)

// Blend selects up to k records honoring the internal-class ratio.
// Each class bucket is sorted by descending score; round(ratio*k) slots
// go to internal records and the rest to web records. When a bucket runs
// out before its quota the other bucket backfills, so slots are never
// left empty while eligible records remain.
func Blend(scored []score.ScoredResult, ratio float64, k int) []score.ScoredResult {
	if k <= 0 || len(scored) == 0 {
		return nil
	}

	var internal, web []score.ScoredResult
	for _, r := range scored {
		if r.Class == provider.ClassInternal {
			internal = append(internal, r)
		} else {
			web = append(web, r)
		}
	}
	sortByScore(internal)
	sortByScore(web)

	nInternal := int(math.Round(ratio * float64(k)))
	if nInternal > k {
		nInternal = k
	}
	nWeb := k - nInternal

	takeInternal := min(nInternal, len(internal))
	takeWeb := min(nWeb, len(web))

	// Backfill unused quota from the other bucket.
	if short := nInternal - takeInternal; short > 0 {
		takeWeb = min(takeWeb+short, len(web))
	}
	if short := nWeb - takeWeb; short > 0 {
		takeInternal = min(takeInternal+short, len(internal))
	}

	selected := make([]score.ScoredResult, 0, takeInternal+takeWeb)
	selected = append(selected, internal[:takeInternal]...)
	selected = append(selected, web[:takeWeb]...)
	sortByScore(selected)
	return selected
}

// sortByScore orders by descending score with a stable tie-break on
// provider then URL, so equal inputs always produce equal output order.
func sortByScore(records []score.ScoredResult) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		if records[i].ProviderID != records[j].ProviderID {
			return records[i].ProviderID < records[j].ProviderID
		}
		return records[i].URL < records[j].URL
	})
}
