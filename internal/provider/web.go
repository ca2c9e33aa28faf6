package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fathom-search/fathom/internal/config"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 4 << 20

// WebProvider adapts one JSON web search API to the provider contract.
// The kind selects the native response decoder; everything downstream of
// decode is shared.
type WebProvider struct {
	id       string
	kind     string
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewWebProvider creates an adapter for one registered JSON backend.
// The shared client carries no timeout of its own: call deadlines come
// from the dispatcher's context.
func NewWebProvider(cfg config.Provider, client *http.Client) *WebProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebProvider{
		id:       cfg.ID,
		kind:     cfg.Kind,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   client,
	}
}

// ID implements Provider.
func (w *WebProvider) ID() string { return w.id }

// Class implements Provider.
func (w *WebProvider) Class() SourceClass { return ClassWeb }

// Search implements Provider.
func (w *WebProvider) Search(ctx context.Context, q Query) ([]RawResult, error) {
	queryText := q.Text
	if w.kind == config.KindAggregator || w.kind == config.KindUnrestricted {
		// Keyword-matching backends benefit from the expanded query;
		// semantic backends handle similarity natively.
		queryText = q.LexicalText()
	}

	body, err := w.get(ctx, queryText)
	if err != nil {
		return nil, err
	}

	switch w.kind {
	case config.KindPrivacy:
		return w.decodePrivacy(body)
	case config.KindSemantic:
		return w.decodeSemantic(body)
	case config.KindAggregator:
		return w.decodeAggregator(body)
	case config.KindUnrestricted:
		return w.decodeUnrestricted(body)
	default:
		return nil, fmt.Errorf("web provider %s: unsupported kind %q", w.id, w.kind)
	}
}

// get performs the backend request and returns the raw body.
// Network failures and non-2xx statuses are unreachable conditions.
func (w *WebProvider) get(ctx context.Context, queryText string) ([]byte, error) {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return nil, fmt.Errorf("provider %s endpoint: %w", w.id, err)
	}
	params := u.Query()
	params.Set("q", queryText)
	if w.kind == config.KindAggregator {
		params.Set("format", "json")
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("provider %s request: %w", w.id, err)
	}
	req.Header.Set("Accept", "application/json")
	if w.apiKey != "" {
		switch w.kind {
		case config.KindPrivacy:
			req.Header.Set("X-Subscription-Token", w.apiKey)
		default:
			req.Header.Set("Authorization", "Bearer "+w.apiKey)
		}
	}

	resp, err := w.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("provider %s: %w: %v", w.id, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider %s: %w: status %d", w.id, ErrUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("provider %s: %w: read body: %v", w.id, ErrUnreachable, err)
	}
	return body, nil
}

// privacyResponse is the native shape of the privacy search backend.
type privacyResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			PageAge     string `json:"page_age"`
		} `json:"results"`
	} `json:"web"`
}

func (w *WebProvider) decodePrivacy(body []byte) ([]RawResult, error) {
	var native privacyResponse
	if err := json.Unmarshal(body, &native); err != nil {
		return nil, fmt.Errorf("provider %s: decode: %w", w.id, err)
	}

	results := make([]RawResult, 0, len(native.Web.Results))
	for i, r := range native.Web.Results {
		results = append(results, RawResult{
			ProviderID:   w.id,
			URL:          r.URL,
			Title:        r.Title,
			Snippet:      r.Description,
			PublishedAt:  parseTimestamp(r.PageAge),
			ProviderRank: i + 1,
		})
	}
	return results, nil
}

// semanticResponse is the native shape of the semantic search backend.
type semanticResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Text          string  `json:"text"`
		PublishedDate string  `json:"publishedDate"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

func (w *WebProvider) decodeSemantic(body []byte) ([]RawResult, error) {
	var native semanticResponse
	if err := json.Unmarshal(body, &native); err != nil {
		return nil, fmt.Errorf("provider %s: decode: %w", w.id, err)
	}

	results := make([]RawResult, 0, len(native.Results))
	for i, r := range native.Results {
		results = append(results, RawResult{
			ProviderID:   w.id,
			URL:          r.URL,
			Title:        r.Title,
			Snippet:      r.Text,
			PublishedAt:  parseTimestamp(r.PublishedDate),
			ProviderRank: i + 1,
		})
	}
	return results, nil
}

// aggregatorResponse is the native shape of the aggregator backend
// (SearXNG JSON format).
type aggregatorResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		PublishedDate string `json:"publishedDate"`
	} `json:"results"`
}

func (w *WebProvider) decodeAggregator(body []byte) ([]RawResult, error) {
	var native aggregatorResponse
	if err := json.Unmarshal(body, &native); err != nil {
		return nil, fmt.Errorf("provider %s: decode: %w", w.id, err)
	}

	results := make([]RawResult, 0, len(native.Results))
	for i, r := range native.Results {
		results = append(results, RawResult{
			ProviderID:   w.id,
			URL:          r.URL,
			Title:        r.Title,
			Snippet:      r.Content,
			PublishedAt:  parseTimestamp(r.PublishedDate),
			ProviderRank: i + 1,
		})
	}
	return results, nil
}

// unrestrictedResponse is the native shape of the unrestricted-content
// backend.
type unrestrictedResponse struct {
	Hits []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Excerpt string `json:"excerpt"`
		Date    string `json:"date"`
	} `json:"hits"`
}

func (w *WebProvider) decodeUnrestricted(body []byte) ([]RawResult, error) {
	var native unrestrictedResponse
	if err := json.Unmarshal(body, &native); err != nil {
		return nil, fmt.Errorf("provider %s: decode: %w", w.id, err)
	}

	results := make([]RawResult, 0, len(native.Hits))
	for i, r := range native.Hits {
		results = append(results, RawResult{
			ProviderID:   w.id,
			URL:          r.Link,
			Title:        r.Title,
			Snippet:      r.Excerpt,
			PublishedAt:  parseTimestamp(r.Date),
			ProviderRank: i + 1,
		})
	}
	return results, nil
}

// parseTimestamp tries the timestamp formats the backends emit.
// Returns nil for unknown formats: downstream scoring treats nil as
// "freshness unknown", never as an error.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
