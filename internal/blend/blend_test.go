package blend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/score"
)

func makeScored(class provider.SourceClass, n int, base float64) []score.ScoredResult {
	out := make([]score.ScoredResult, n)
	for i := range out {
		out[i] = score.ScoredResult{
			RawResult: provider.RawResult{
				ProviderID: string(class),
				URL:        fmt.Sprintf("https://%s.example/%d", class, i),
				Title:      fmt.Sprintf("%s %d", class, i),
			},
			Class: class,
			Score: base - float64(i)*0.01,
		}
	}
	return out
}

func countByClass(records []score.ScoredResult) (internal, web int) {
	for _, r := range records {
		if r.Class == provider.ClassInternal {
			internal++
		} else {
			web++
		}
	}
	return
}

func TestBlend_ExactQuota(t *testing.T) {
	// Web records score higher across the board; the quota must still hold.
	scored := append(makeScored(provider.ClassInternal, 8, 0.5), makeScored(provider.ClassWeb, 8, 0.9)...)

	blended := Blend(scored, 0.6, 10)
	require.Len(t, blended, 10)

	internal, web := countByClass(blended)
	assert.Equal(t, 6, internal)
	assert.Equal(t, 4, web)
}

func TestBlend_SortedByScore(t *testing.T) {
	scored := append(makeScored(provider.ClassInternal, 5, 0.5), makeScored(provider.ClassWeb, 5, 0.9)...)

	blended := Blend(scored, 0.5, 8)
	for i := 1; i < len(blended); i++ {
		assert.GreaterOrEqual(t, blended[i-1].Score, blended[i].Score)
	}
}

func TestBlend_BackfillFromWeb(t *testing.T) {
	scored := append(makeScored(provider.ClassInternal, 2, 0.5), makeScored(provider.ClassWeb, 20, 0.9)...)

	blended := Blend(scored, 0.6, 10)
	require.Len(t, blended, 10, "slots are never left empty while records remain")

	internal, web := countByClass(blended)
	assert.Equal(t, 2, internal)
	assert.Equal(t, 8, web)
}

func TestBlend_BackfillFromInternal(t *testing.T) {
	scored := append(makeScored(provider.ClassInternal, 20, 0.5), makeScored(provider.ClassWeb, 1, 0.9)...)

	blended := Blend(scored, 0.6, 10)
	require.Len(t, blended, 10)

	internal, web := countByClass(blended)
	assert.Equal(t, 9, internal)
	assert.Equal(t, 1, web)
}

func TestBlend_FewerRecordsThanK(t *testing.T) {
	scored := append(makeScored(provider.ClassInternal, 2, 0.5), makeScored(provider.ClassWeb, 1, 0.9)...)

	blended := Blend(scored, 0.6, 10)
	assert.Len(t, blended, 3)
}

func TestBlend_TakesHighestScoredPerBucket(t *testing.T) {
	scored := append(makeScored(provider.ClassInternal, 10, 0.8), makeScored(provider.ClassWeb, 10, 0.9)...)

	blended := Blend(scored, 0.5, 4)
	require.Len(t, blended, 4)
	assert.Equal(t, "https://web.example/0", blended[0].URL)
	assert.Equal(t, "https://web.example/1", blended[1].URL)
	assert.Equal(t, "https://internal.example/0", blended[2].URL)
	assert.Equal(t, "https://internal.example/1", blended[3].URL)
}

func TestBlend_Empty(t *testing.T) {
	assert.Nil(t, Blend(nil, 0.6, 10))
	assert.Nil(t, Blend(makeScored(provider.ClassWeb, 3, 0.5), 0.6, 0))
}

func TestBlend_RatioExtremes(t *testing.T) {
	scored := append(makeScored(provider.ClassInternal, 10, 0.5), makeScored(provider.ClassWeb, 10, 0.9)...)

	internal, web := countByClass(Blend(scored, 1.0, 10))
	assert.Equal(t, 10, internal)
	assert.Zero(t, web)

	internal, web = countByClass(Blend(scored, 0.0, 10))
	assert.Zero(t, internal)
	assert.Equal(t, 10, web)
}
