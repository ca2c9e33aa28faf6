package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []Document {
	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []Document{
		{ID: "d1", Title: "Go concurrency patterns", Body: "Goroutines, channels, and the errgroup package for parallel fan-out.", PublishedAt: &published},
		{ID: "d2", Title: "SQLite FTS5 guide", Body: "Full-text search with BM25 ranking inside SQLite."},
		{ID: "d3", Title: "Gardening for beginners", Body: "Soil, compost, and watering schedules."},
	}
}

func TestKnowledgeProvider_Backends(t *testing.T) {
	for _, backend := range []string{"bleve", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			kp, err := NewKnowledgeProvider("knowledge", backend, "")
			require.NoError(t, err)
			defer kp.Close()

			ctx := context.Background()
			require.NoError(t, kp.Ingest(ctx, testDocs()))
			assert.Equal(t, 3, kp.Count())

			results, err := kp.Search(ctx, Query{Text: "concurrency goroutines"})
			require.NoError(t, err)
			require.NotEmpty(t, results)

			first := results[0]
			assert.Equal(t, "knowledge", first.ProviderID)
			assert.Equal(t, "Go concurrency patterns", first.Title)
			assert.Equal(t, 1, first.ProviderRank)
			assert.NotEmpty(t, first.Snippet)
			assert.Empty(t, first.URL)
		})
	}
}

func TestKnowledgeProvider_ZeroResultsIsNotError(t *testing.T) {
	kp, err := NewKnowledgeProvider("knowledge", "bleve", "")
	require.NoError(t, err)
	defer kp.Close()

	ctx := context.Background()
	require.NoError(t, kp.Ingest(ctx, testDocs()))

	results, err := kp.Search(ctx, Query{Text: "quantum chromodynamics"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKnowledgeProvider_UsesExpandedQuery(t *testing.T) {
	kp, err := NewKnowledgeProvider("knowledge", "bleve", "")
	require.NoError(t, err)
	defer kp.Close()

	ctx := context.Background()
	require.NoError(t, kp.Ingest(ctx, testDocs()))

	// Original text misses; the expanded variant matches.
	results, err := kp.Search(ctx, Query{Text: "parallelism", Expanded: "parallelism concurrency"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Go concurrency patterns", results[0].Title)
}

func TestKnowledgeProvider_UnknownBackend(t *testing.T) {
	_, err := NewKnowledgeProvider("knowledge", "postgres", "")
	require.Error(t, err)
}

func TestKnowledgeProvider_LoadCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.jsonl")
	data := `{"id":"c1","title":"Tor relays","body":"How onion routing works.","url":"https://example.org/tor"}
not json at all
{"id":"","title":"missing id"}
{"id":"c2","title":"DNS privacy","body":"DoH and DoT compared.","published_at":"2025-03-01T00:00:00Z"}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	kp, err := NewKnowledgeProvider("knowledge", "bleve", "")
	require.NoError(t, err)
	defer kp.Close()

	require.NoError(t, kp.LoadCorpus(context.Background(), path))
	assert.Equal(t, 2, kp.Count(), "malformed lines are skipped")

	results, err := kp.Search(context.Background(), Query{Text: "onion routing"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "https://example.org/tor", results[0].URL)
}

func TestKnowledgeProvider_MissingCorpus(t *testing.T) {
	kp, err := NewKnowledgeProvider("knowledge", "bleve", "")
	require.NoError(t, err)
	defer kp.Close()

	err = kp.LoadCorpus(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
}

func TestMakeSnippet(t *testing.T) {
	short := "short body"
	assert.Equal(t, short, makeSnippet(short))

	long := ""
	for i := 0; i < 60; i++ {
		long += "word "
	}
	snip := makeSnippet(long)
	assert.LessOrEqual(t, len(snip), snippetLen+len("…"))
	assert.Contains(t, snip, "…")
}
