// Package provider defines the uniform adapter contract over heterogeneous
// search backends and the adapters themselves: the internal knowledge index,
// JSON web search APIs, and HTML scraping engines.
//
// Each adapter translates its backend's native response into RawResult and
// nothing else; backend-specific authentication and wire details never cross
// this boundary. Adapters are reentrant: safe for concurrent queries.
package provider

import (
	"context"
	"errors"
	"time"
)

// SourceClass is the coarse classification used for blend-ratio accounting.
type SourceClass string

const (
	// ClassInternal marks records from the internal knowledge index.
	ClassInternal SourceClass = "internal"
	// ClassWeb marks records from any external web backend.
	ClassWeb SourceClass = "web"
)

// ErrUnreachable distinguishes "backend unreachable" from "backend reachable
// but no results" (which returns an empty slice, not an error). The
// dispatcher records unreachable providers as degraded instead of failing
// the query.
var ErrUnreachable = errors.New("provider unreachable")

// Query is the normalized search request handed to every adapter.
type Query struct {
	// Text is the original user query.
	Text string

	// Expanded is the synonym-expanded variant for lexical backends.
	// Empty when expansion is disabled for the active mode.
	Expanded string
}

// LexicalText returns the expanded query when present, falling back to the
// original. Adapters that match exact keywords benefit from expansion;
// semantic backends should use Text directly.
func (q Query) LexicalText() string {
	if q.Expanded != "" {
		return q.Expanded
	}
	return q.Text
}

// RawResult is the common record shape every backend's native result is
// normalized into. Produced per provider call; ownership transfers to the
// dispatcher on completion.
type RawResult struct {
	// ProviderID identifies the adapter that produced this record.
	ProviderID string

	// URL is empty for pure-internal records.
	URL string

	Title   string
	Snippet string

	// PublishedAt is nil when the backend reports no timestamp.
	PublishedAt *time.Time

	// ProviderRank is the 1-based position in the provider's own ordering.
	ProviderRank int
}

// Provider is the uniform interface over one search backend.
type Provider interface {
	// ID returns the provider's registered identifier.
	ID() string

	// Class returns the provider's source class.
	Class() SourceClass

	// Search executes the query within the caller-imposed context deadline.
	// Zero results is a nil error and an empty slice; an unreachable
	// backend returns an error wrapping ErrUnreachable.
	Search(ctx context.Context, q Query) ([]RawResult, error)
}
