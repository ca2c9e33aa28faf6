package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// bleveDocument is the document structure indexed into bleve.
type bleveDocument struct {
	Content string `json:"content"`
}

// bleveIndex implements knowledgeIndex on top of Bleve v2.
type bleveIndex struct {
	mu     sync.RWMutex
	idx    bleve.Index
	closed bool
}

// newBleveIndex opens or creates a bleve index at path.
// Empty path creates an in-memory index.
func newBleveIndex(path string) (*bleveIndex, error) {
	mapping := bleve.NewIndexMapping()

	var (
		idx bleve.Index
		err error
	)
	if path == "" {
		idx, err = bleve.NewMemOnly(mapping)
	} else {
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, mapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open bleve index: %w", err)
	}

	return &bleveIndex{idx: idx}, nil
}

// Index adds documents in one batch. Title and body are indexed together;
// enrichment happens from the provider's document map, not stored fields.
func (b *bleveIndex) Index(ctx context.Context, docs []Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("bleve index is closed")
	}

	batch := b.idx.NewBatch()
	for _, d := range docs {
		doc := bleveDocument{Content: d.Title + "\n" + d.Body}
		if err := batch.Index(d.ID, doc); err != nil {
			return fmt.Errorf("batch document %s: %w", d.ID, err)
		}
	}
	return b.idx.Batch(batch)
}

// Search returns ranked document IDs for the query.
func (b *bleveIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("bleve index is closed")
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Close releases the index.
func (b *bleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.idx.Close()
}
