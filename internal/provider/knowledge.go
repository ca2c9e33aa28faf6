package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	fatherrors "github.com/fathom-search/fathom/internal/errors"
)

// Document is one record in the internal knowledge index.
type Document struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	URL         string     `json:"url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// knowledgeIndex is the backend contract for the knowledge provider.
// Implementations: bleveIndex, sqliteIndex.
type knowledgeIndex interface {
	Index(ctx context.Context, docs []Document) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Close() error
}

// snippetLen is the maximum snippet length cut from a document body.
const snippetLen = 240

// defaultKnowledgeLimit is how many records one knowledge search returns.
const defaultKnowledgeLimit = 20

// KnowledgeProvider serves the internal knowledge index through the
// uniform provider contract. The index backend is selectable ("bleve" or
// "sqlite") the same way at construction; stored documents are kept in
// memory for result enrichment after the index returns ranked IDs.
type KnowledgeProvider struct {
	id    string
	index knowledgeIndex
	limit int

	mu   sync.RWMutex
	docs map[string]Document
}

// NewKnowledgeProvider creates the internal knowledge provider with the
// given backend ("bleve" or "sqlite"). Empty path means in-memory.
func NewKnowledgeProvider(id, backend, path string) (*KnowledgeProvider, error) {
	var (
		idx knowledgeIndex
		err error
	)
	switch strings.ToLower(backend) {
	case "", "bleve":
		idx, err = newBleveIndex(path)
	case "sqlite":
		idx, err = newSQLiteIndex(path)
	default:
		return nil, fatherrors.New(fatherrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown knowledge backend %q (want bleve or sqlite)", backend), nil)
	}
	if err != nil {
		return nil, err
	}

	return &KnowledgeProvider{
		id:    id,
		index: idx,
		limit: defaultKnowledgeLimit,
		docs:  make(map[string]Document),
	}, nil
}

// ID implements Provider.
func (k *KnowledgeProvider) ID() string { return k.id }

// Class implements Provider.
func (k *KnowledgeProvider) Class() SourceClass { return ClassInternal }

// Ingest adds documents to the index and the enrichment map.
// Existing documents with the same ID are replaced.
func (k *KnowledgeProvider) Ingest(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	if err := k.index.Index(ctx, docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	k.mu.Lock()
	for _, d := range docs {
		k.docs[d.ID] = d
	}
	k.mu.Unlock()
	return nil
}

// LoadCorpus ingests a JSONL corpus file, one Document per line.
// Malformed lines are skipped with a warning rather than failing the load.
func (k *KnowledgeProvider) LoadCorpus(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fatherrors.New(fatherrors.ErrCodeCorpusNotFound,
			fmt.Sprintf("cannot open corpus %s", path), err)
	}
	defer f.Close()

	var docs []Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var d Document
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			slog.Warn("skipping malformed corpus line",
				slog.String("path", path),
				slog.Int("line", line),
				slog.String("error", err.Error()))
			continue
		}
		if d.ID == "" || d.Title == "" {
			slog.Warn("skipping corpus document without id or title",
				slog.String("path", path),
				slog.Int("line", line))
			continue
		}
		docs = append(docs, d)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read corpus %s: %w", path, err)
	}

	if err := k.Ingest(ctx, docs); err != nil {
		return err
	}
	slog.Info("knowledge corpus loaded",
		slog.String("path", path),
		slog.Int("documents", len(docs)))
	return nil
}

// Search implements Provider. The knowledge backend is lexical, so it uses
// the expanded query variant when the active mode enables expansion.
func (k *KnowledgeProvider) Search(ctx context.Context, q Query) ([]RawResult, error) {
	ids, err := k.index.Search(ctx, q.LexicalText(), k.limit)
	if err != nil {
		return nil, fmt.Errorf("knowledge index search: %w", err)
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	results := make([]RawResult, 0, len(ids))
	for i, id := range ids {
		doc, ok := k.docs[id]
		if !ok {
			// Index entry without a stored document; stale, skip it.
			continue
		}
		results = append(results, RawResult{
			ProviderID:   k.id,
			URL:          doc.URL,
			Title:        doc.Title,
			Snippet:      makeSnippet(doc.Body),
			PublishedAt:  doc.PublishedAt,
			ProviderRank: i + 1,
		})
	}
	return results, nil
}

// Count returns the number of stored documents.
func (k *KnowledgeProvider) Count() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.docs)
}

// Close releases the index backend.
func (k *KnowledgeProvider) Close() error {
	return k.index.Close()
}

// makeSnippet cuts a display snippet from a document body at a word
// boundary.
func makeSnippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= snippetLen {
		return body
	}
	cut := body[:snippetLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
