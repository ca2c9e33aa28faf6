// Package search orchestrates the full query pipeline: mode resolution,
// provider fan-out, deduplication, scoring, blending, and response
// assembly.
package search

import "context"

// Request is one inbound search request.
type Request struct {
	// Text is the user query. Must be non-empty.
	Text string `json:"text"`

	// Mode selects the provider/latency/blend policy. Empty means the
	// default mode.
	Mode string `json:"mode,omitempty"`

	// PersonaID identifies the requesting persona for scoring boosts and
	// mode gating. Empty means the default persona.
	PersonaID string `json:"persona_id,omitempty"`

	// SessionID is an opaque correlation token owned by the caller. It is
	// echoed into logs, never interpreted.
	SessionID string `json:"session_id,omitempty"`

	// K is the number of results to return. Zero means the configured
	// default; values above the configured maximum are clamped.
	K int `json:"k,omitempty"`
}

// Result is one ranked entry in a response.
type Result struct {
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	Snippet     string  `json:"snippet"`
	Score       float64 `json:"score"`
	SourceClass string  `json:"source_class"`
	Provider    string  `json:"provider"`
}

// Response is the assembled answer to one request.
type Response struct {
	RequestID         string   `json:"request_id"`
	Mode              string   `json:"mode"`
	Results           []Result `json:"results"`
	DegradedProviders []string `json:"degraded_providers,omitempty"`
	ElapsedMs         int64    `json:"elapsed_ms"`
	Summary           string   `json:"summary,omitempty"`

	// Cached marks responses served from the response cache.
	Cached bool `json:"cached,omitempty"`
}

// Summarizer condenses a blended result set into a short prose summary.
// Implementations must honor the context deadline; a failed or slow
// summary never fails the response.
type Summarizer interface {
	Summarize(ctx context.Context, query string, results []Result) (string, error)
}
