package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/panjf2000/ants/v2"

	"github.com/fathom-search/fathom/internal/config"
)

// scrapeUserAgent identifies page fetches made by the scraping adapter.
const scrapeUserAgent = "fathom/1.0 (+https://github.com/fathom-search/fathom)"

// ScrapeProvider adapts an HTML results page (a SearXNG-style engine
// without a JSON API) to the provider contract. It parses the result list
// with goquery, then fetches the top pages concurrently to extract fuller
// descriptions than the listing carries.
type ScrapeProvider struct {
	id          string
	endpoint    string
	client      *http.Client
	pageFetches int
	pool        *ants.Pool
}

// NewScrapeProvider creates the scraping adapter. pageFetches controls how
// many result pages are fetched for snippet enrichment (0 disables).
func NewScrapeProvider(cfg config.Provider, client *http.Client) (*ScrapeProvider, error) {
	if client == nil {
		client = http.DefaultClient
	}

	workers := cfg.PageFetches
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("scrape worker pool: %w", err)
	}

	return &ScrapeProvider{
		id:          cfg.ID,
		endpoint:    cfg.Endpoint,
		client:      client,
		pageFetches: cfg.PageFetches,
		pool:        pool,
	}, nil
}

// ID implements Provider.
func (s *ScrapeProvider) ID() string { return s.id }

// Class implements Provider.
func (s *ScrapeProvider) Class() SourceClass { return ClassWeb }

// Close releases the fetch pool.
func (s *ScrapeProvider) Close() error {
	s.pool.Release()
	return nil
}

// Search implements Provider.
func (s *ScrapeProvider) Search(ctx context.Context, q Query) ([]RawResult, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("provider %s endpoint: %w", s.id, err)
	}
	params := u.Query()
	params.Set("q", q.LexicalText())
	u.RawQuery = params.Encode()

	doc, err := s.fetchDocument(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var results []RawResult
	doc.Find(".result").Each(func(i int, sel *goquery.Selection) {
		link := sel.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		results = append(results, RawResult{
			ProviderID:   s.id,
			URL:          href,
			Title:        title,
			Snippet:      strings.TrimSpace(sel.Find(".content").Text()),
			ProviderRank: len(results) + 1,
		})
	})

	s.enrichSnippets(ctx, results)
	return results, nil
}

// enrichSnippets fetches the top result pages concurrently and fills in
// missing or short snippets from the page metadata. Fetch failures only
// cost the enrichment, never the result.
func (s *ScrapeProvider) enrichSnippets(ctx context.Context, results []RawResult) {
	n := s.pageFetches
	if n > len(results) {
		n = len(results)
	}
	if n <= 0 {
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if len(results[i].Snippet) >= 80 {
			continue
		}
		i := i
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			s.enrichOne(ctx, &results[i])
		}); err != nil {
			wg.Done()
		}
	}
	wg.Wait()
}

func (s *ScrapeProvider) enrichOne(ctx context.Context, r *RawResult) {
	doc, err := s.fetchDocument(ctx, r.URL)
	if err != nil {
		slog.Debug("snippet enrichment fetch failed",
			slog.String("provider", s.id),
			slog.String("url", r.URL),
			slog.String("error", err.Error()))
		return
	}

	if desc := extractDescription(doc); desc != "" {
		r.Snippet = desc
	}
	if r.Title == "" {
		r.Title = extractTitle(doc)
	}
}

// fetchDocument GETs a URL and parses it as HTML.
func (s *ScrapeProvider) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("provider %s request: %w", s.id, err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("provider %s: %w: %v", s.id, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider %s: %w: status %d", s.id, ErrUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("provider %s: read body: %w", s.id, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("provider %s: parse html: %w", s.id, err)
	}
	return doc, nil
}

// extractTitle pulls a title from HTML, preferring OpenGraph metadata.
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// extractDescription pulls a description from HTML metadata.
func extractDescription(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && og != "" {
		return strings.TrimSpace(og)
	}
	if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && meta != "" {
		return strings.TrimSpace(meta)
	}
	return ""
}
